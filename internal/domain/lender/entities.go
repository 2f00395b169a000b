package lender

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("lender not found")

type Lender struct {
	LenderID         string    `gorm:"column:lender_id;primaryKey;size:36" json:"lender_id"`
	Email            string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Name             string    `gorm:"column:name;size:255;not null" json:"name"`
	PasswordHash     string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	BankAccount      string    `gorm:"column:bank_account;size:64" json:"bank_account"`
	TotalFundedLoans int       `gorm:"column:total_funded_loans;not null;default:0" json:"total_funded_loans"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Lender) TableName() string { return "lenders" }

// Summary is the public directory view of a lender.
type Summary struct {
	LenderID string `json:"lender_id"`
	Name     string `json:"name"`
}
