package mysql

import (
	"agriloan-backend/internal/domain/disbursement"
	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"

	"gorm.io/gorm"
)

// Models in dependency order (parents before children).
func Models() []any {
	return []any{
		&farmer.Farmer{},
		&farmer.KYCDetails{},
		&lender.Lender{},
		&loan.LoanApplication{},
		&loan.CollateralDocument{},
		&disbursement.Disbursement{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
