package farmer

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("farmer not found")
	ErrKYCNotFound     = errors.New("kyc details not found")
	ErrAlreadyVerified = errors.New("kyc already completed")
)

const VerificationVerified = "verified"

type Farmer struct {
	FarmerID     string    `gorm:"column:farmer_id;primaryKey;size:36" json:"farmer_id"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Location     string    `gorm:"column:location;size:255" json:"location"`
	BankAccount  string    `gorm:"column:bank_account;size:64" json:"bank_account"`
	KYCVerified  bool      `gorm:"column:kyc_verified;not null;default:false" json:"kyc_verified"`
	AadharNumber *string   `gorm:"column:aadhar_number;size:32" json:"aadhar_number"`
	PANNumber    *string   `gorm:"column:pan_number;size:32" json:"pan_number"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`

	KYC *KYCDetails `gorm:"foreignKey:FarmerID;references:FarmerID" json:"kyc,omitempty"`
}

func (Farmer) TableName() string { return "farmers" }

// KYCHash returns the stored KYC commitment, or "" when KYC is absent.
func (f *Farmer) KYCHash() string {
	if f == nil || f.KYC == nil {
		return ""
	}
	return f.KYC.KYCHash
}

// KYCDetails holds the hash commitment over the farmer's identity numbers. The
// raw numbers stay on Farmer and never leave local storage.
type KYCDetails struct {
	KYCID              string    `gorm:"column:kyc_id;primaryKey;size:36" json:"kyc_id"`
	FarmerID           string    `gorm:"column:farmer_id;size:36;not null;uniqueIndex" json:"farmer_id"`
	VerificationStatus string    `gorm:"column:verification_status;size:16;not null" json:"verification_status"`
	VerificationDate   time.Time `gorm:"column:verification_date" json:"verification_date"`
	KYCHash            string    `gorm:"column:kyc_hash;size:64;not null" json:"kyc_hash"`
	IdentityDocuments  string    `gorm:"column:identity_documents;type:text" json:"identity_documents"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (KYCDetails) TableName() string { return "kyc_details" }
