package ledgersync

import (
	"context"
	"testing"
	"time"

	"agriloan-backend/internal/adapter/repository/mysql"
	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRun_AgainstSQLiteStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, mysql.AutoMigrate(db))

	ctx := context.Background()
	farmers := mysql.NewFarmerRepository(db)
	loans := mysql.NewLoanRepository(db)

	require.NoError(t, mysql.NewLenderRepository(db).Create(ctx, &lender.Lender{LenderID: "l-1", Email: "l@bank.test", Name: "Bank", PasswordHash: "x"}))
	require.NoError(t, farmers.Create(ctx, &farmer.Farmer{FarmerID: "f-kyc", Email: "a@farm.test", Name: "A", PasswordHash: "x"}))
	require.NoError(t, farmers.Create(ctx, &farmer.Farmer{FarmerID: "f-none", Email: "b@farm.test", Name: "B", PasswordHash: "x"}))
	require.NoError(t, farmers.CreateKYC(ctx, &farmer.KYCDetails{KYCID: "k-1", FarmerID: "f-kyc", VerificationStatus: farmer.VerificationVerified, KYCHash: "c0ffee"}))

	lenderID := "l-1"
	for i, fid := range []string{"f-kyc", "f-none", "f-kyc"} {
		require.NoError(t, loans.Create(ctx, &loan.LoanApplication{
			ApplicationID:   []string{"a-1", "a-2", "a-3"}[i],
			FarmerID:        fid,
			LenderID:        &lenderID,
			Amount:          decimal.NewFromInt(5000),
			TenureMonths:    3,
			Status:          loan.StatusDisbursed,
			ApplicationDate: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	c := &chain{}
	syncer := New(loans, c.client(), Config{}, quietLog())
	syncer.sleep = func(context.Context, time.Duration) error { return nil }

	rep, err := syncer.Run(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, 2, rep.Anchored())
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, "a-2", rep.Skipped[0].ApplicationID)

	got, err := loans.GetByApplicationID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "0xtx1", got.BlockchainHash)
	assert.Equal(t, loan.StatusDisbursed, got.Status)
	assert.Equal(t, "c0ffee", c.submitted[0].KYCHash)

	rep, err = syncer.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
	assert.Len(t, c.submitted, 2)
}
