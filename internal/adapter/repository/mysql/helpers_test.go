package mysql

import (
	"context"
	"testing"
	"time"

	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection: every new :memory: connection is an empty database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func seedFarmer(t *testing.T, db *gorm.DB, withKYC bool) *farmer.Farmer {
	t.Helper()
	f := &farmer.Farmer{
		FarmerID:     uuid.NewString(),
		Email:        uuid.NewString() + "@farm.test",
		Name:         "Ravi",
		PasswordHash: "x",
		Location:     "Nashik",
	}
	if err := NewFarmerRepository(db).Create(context.Background(), f); err != nil {
		t.Fatalf("seed farmer: %v", err)
	}
	if withKYC {
		k := &farmer.KYCDetails{
			KYCID:              uuid.NewString(),
			FarmerID:           f.FarmerID,
			VerificationStatus: farmer.VerificationVerified,
			VerificationDate:   time.Now().UTC(),
			KYCHash:            "ab12",
			IdentityDocuments:  "ab12",
		}
		if err := NewFarmerRepository(db).CreateKYC(context.Background(), k); err != nil {
			t.Fatalf("seed kyc: %v", err)
		}
		f.KYC = k
	}
	return f
}

func seedLender(t *testing.T, db *gorm.DB) *lender.Lender {
	t.Helper()
	l := &lender.Lender{
		LenderID:     uuid.NewString(),
		Email:        uuid.NewString() + "@bank.test",
		Name:         "Grameen Capital",
		PasswordHash: "x",
	}
	if err := NewLenderRepository(db).Create(context.Background(), l); err != nil {
		t.Fatalf("seed lender: %v", err)
	}
	return l
}

func makeApplication(farmerID, lenderID string, status loan.Status, appliedAt time.Time) *loan.LoanApplication {
	return &loan.LoanApplication{
		ApplicationID:   uuid.NewString(),
		FarmerID:        farmerID,
		LenderID:        &lenderID,
		Amount:          decimal.NewFromInt(10_000),
		TenureMonths:    6,
		Purpose:         "seeds",
		Status:          status,
		ApplicationDate: appliedAt.UTC(),
	}
}
