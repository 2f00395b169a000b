package loan

import (
	"errors"
	"time"

	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDisbursed Status = "disbursed"
)

// Interest rate policy bounds, in percent, inclusive.
var (
	MinInterestRate = decimal.NewFromInt(5)
	MaxInterestRate = decimal.NewFromInt(12)
)

const DefaultRejectionReason = "Not provided"

var (
	ErrNotFound               = errors.New("loan application not found")
	ErrInvalidTransition      = errors.New("invalid loan status transition")
	ErrNotAuthorized          = errors.New("not authorized for this loan application")
	ErrInterestRateOutOfRange = errors.New("interest rate must be between 5 and 12 percent")
	ErrInvalidInput           = errors.New("invalid input")
	ErrAlreadyAnchored        = errors.New("loan application already anchored")
)

// LoanApplication is owned by the application store. The ledger synchronizer
// only ever writes BlockchainHash.
type LoanApplication struct {
	ApplicationID   string           `gorm:"column:application_id;primaryKey;size:36" json:"application_id"`
	FarmerID        string           `gorm:"column:farmer_id;size:36;not null;index" json:"farmer_id"`
	LenderID        *string          `gorm:"column:lender_id;size:36;index" json:"lender_id"`
	Amount          decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TenureMonths    int              `gorm:"column:tenure_months;not null" json:"tenure_months"`
	InterestRate    *decimal.Decimal `gorm:"column:interest_rate;type:decimal(5,2)" json:"interest_rate"`
	Purpose         string           `gorm:"column:purpose;type:text" json:"purpose"`
	Status          Status           `gorm:"column:status;size:16;not null;index:idx_loan_status_date" json:"status"`
	RejectionReason *string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ApplicationDate time.Time        `gorm:"column:application_date;not null;index:idx_loan_status_date" json:"application_date"`
	DueDate         *time.Time       `gorm:"column:due_date" json:"due_date"`
	BlockchainHash  string           `gorm:"column:blockchain_hash;size:80;default:''" json:"blockchain_hash"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Farmer *farmer.Farmer `gorm:"foreignKey:FarmerID;references:FarmerID" json:"farmer,omitempty"`
	Lender *lender.Lender `gorm:"foreignKey:LenderID;references:LenderID" json:"lender,omitempty"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

// Anchored reports whether a ledger transaction reference is already stored.
func (l *LoanApplication) Anchored() bool { return l.BlockchainHash != "" }

// AssignedTo reports whether lenderID is the lender on the application.
func (l *LoanApplication) AssignedTo(lenderID string) bool {
	return l.LenderID != nil && *l.LenderID == lenderID
}

// CollateralDocument links a KYC record to an application at apply time.
type CollateralDocument struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DocumentID    string    `gorm:"column:document_id;size:36;not null" json:"document_id"`
	ApplicationID string    `gorm:"column:application_id;size:36;not null;index" json:"application_id"`
	DocumentType  string    `gorm:"column:document_type;size:16;not null" json:"document_type"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CollateralDocument) TableName() string { return "collateral_documents" }
