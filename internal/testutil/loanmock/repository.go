package loanmock

import (
	"context"

	domain "agriloan-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn                      func(ctx context.Context, l *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	SaveFn                        func(ctx context.Context, l *domain.LoanApplication) error
	ListByFarmerFn                func(ctx context.Context, farmerID string) ([]domain.LoanApplication, error)
	ListByLenderFn                func(ctx context.Context, lenderID string) ([]domain.LoanApplication, error)
	ListAnchorCandidatesFn        func(ctx context.Context, statuses []domain.Status, limit int) ([]domain.LoanApplication, error)
	SetBlockchainHashFn           func(ctx context.Context, applicationID, hash string) error
	AttachCollateralFn            func(ctx context.Context, d *domain.CollateralDocument) error
}

func (m *Repo) Create(ctx context.Context, l *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.LoanApplication) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByFarmer(ctx context.Context, farmerID string) ([]domain.LoanApplication, error) {
	if m.ListByFarmerFn != nil {
		return m.ListByFarmerFn(ctx, farmerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLender(ctx context.Context, lenderID string) ([]domain.LoanApplication, error) {
	if m.ListByLenderFn != nil {
		return m.ListByLenderFn(ctx, lenderID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAnchorCandidates(ctx context.Context, statuses []domain.Status, limit int) ([]domain.LoanApplication, error) {
	if m.ListAnchorCandidatesFn != nil {
		return m.ListAnchorCandidatesFn(ctx, statuses, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) SetBlockchainHash(ctx context.Context, applicationID, hash string) error {
	if m.SetBlockchainHashFn != nil {
		return m.SetBlockchainHashFn(ctx, applicationID, hash)
	}
	return nil
}

func (m *Repo) AttachCollateral(ctx context.Context, d *domain.CollateralDocument) error {
	if m.AttachCollateralFn != nil {
		return m.AttachCollateralFn(ctx, d)
	}
	return nil
}
