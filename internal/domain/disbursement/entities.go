package disbursement

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusCompleted = "completed"

// Table: disbursements. At most one row per application.
type Disbursement struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier
	DisbursementID  string          `gorm:"column:disbursement_id;size:36;not null;uniqueIndex" json:"disbursement_id"`
	ApplicationID   string          `gorm:"column:application_id;size:36;not null;uniqueIndex" json:"application_id"`
	LenderID        string          `gorm:"column:lender_id;size:36;not null;index" json:"lender_id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Status          string          `gorm:"column:status;size:16;not null" json:"status"`
	TransactionHash string          `gorm:"column:transaction_hash;size:64;not null" json:"transaction_hash"`
	DisbursedAt     time.Time       `gorm:"column:disbursed_at;not null" json:"disbursed_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Disbursement) TableName() string { return "disbursements" }
