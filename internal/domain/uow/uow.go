package uow

import (
	"context"

	"agriloan-backend/internal/domain/disbursement"
	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"
)

// Repos are bound to the same transaction.
type Repos struct {
	Loans         loan.Repository
	Disbursements disbursement.Repository
	Farmers       farmer.Repository
	Lenders       lender.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, l *loan.LoanApplication) error) error
}
