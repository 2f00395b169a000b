package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrFarmerNotFound = errors.New("farmer not found")
	ErrLenderNotFound = errors.New("invalid lender_id")
)

type ApplyInput struct {
	FarmerID     string
	LenderID     string
	Amount       decimal.Decimal
	TenureMonths int
	Purpose      string
}

// ApproveInput: nil fields keep the value stored on the application.
type ApproveInput struct {
	ApplicationID string
	LenderID      string
	Amount        *decimal.Decimal
	InterestRate  *decimal.Decimal
	TenureMonths  *int
}

type RejectInput struct {
	ApplicationID string
	LenderID      string
	Reason        string
}

type DisburseInput struct {
	ApplicationID string
	LenderID      string
}

// LenderRef is the lender summary shown on a farmer's own applications.
type LenderRef struct {
	LenderID string `json:"lender_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type ApplicationDTO struct {
	ApplicationID   string           `json:"application_id"`
	FarmerID        string           `json:"farmer_id"`
	LenderID        *string          `json:"lender_id"`
	Amount          decimal.Decimal  `json:"amount"`
	TenureMonths    int              `json:"tenure_months"`
	InterestRate    *decimal.Decimal `json:"interest_rate"`
	Purpose         string           `json:"purpose"`
	Status          string           `json:"status"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	ApplicationDate time.Time        `json:"application_date"`
	DueDate         *time.Time       `json:"due_date"`
	BlockchainHash  string           `json:"blockchain_hash"`
	Lender          *LenderRef       `json:"lender,omitempty"`
	Farmer          *FarmerRef       `json:"farmer,omitempty"`
}

// FarmerRef is the borrower summary shown to the assigned lender. Identity
// numbers are never included.
type FarmerRef struct {
	FarmerID    string `json:"farmer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	KYCVerified bool   `json:"kyc_verified"`
}

type DisbursementDTO struct {
	DisbursementID  string          `json:"disbursement_id"`
	ApplicationID   string          `json:"application_id"`
	LenderID        string          `json:"lender_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	TransactionHash string          `json:"transaction_hash"`
	DisbursedAt     time.Time       `json:"disbursed_at"`
}
