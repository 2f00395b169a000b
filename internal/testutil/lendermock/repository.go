package lendermock

import (
	"context"

	domain "agriloan-backend/internal/domain/lender"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Lender) error
	GetByIDFn              func(ctx context.Context, lenderID string) (*domain.Lender, error)
	GetByEmailFn           func(ctx context.Context, email string) (*domain.Lender, error)
	ListFn                 func(ctx context.Context) ([]domain.Summary, error)
	IncrementFundedLoansFn func(ctx context.Context, lenderID string) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Lender) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, lenderID string) (*domain.Lender, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, lenderID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.Lender, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context) ([]domain.Summary, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) IncrementFundedLoans(ctx context.Context, lenderID string) error {
	if m.IncrementFundedLoansFn != nil {
		return m.IncrementFundedLoansFn(ctx, lenderID)
	}
	return nil
}
