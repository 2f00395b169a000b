package farmermock

import (
	"context"

	domain "agriloan-backend/internal/domain/farmer"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, f *domain.Farmer) error
	GetByIDFn         func(ctx context.Context, farmerID string) (*domain.Farmer, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.Farmer, error)
	GetKYCFn          func(ctx context.Context, farmerID string) (*domain.KYCDetails, error)
	CreateKYCFn       func(ctx context.Context, k *domain.KYCDetails) error
	MarkKYCVerifiedFn func(ctx context.Context, farmerID, aadhar, pan string) error
}

func (m *Repo) Create(ctx context.Context, f *domain.Farmer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, f)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, farmerID string) (*domain.Farmer, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, farmerID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.Farmer, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetKYC(ctx context.Context, farmerID string) (*domain.KYCDetails, error) {
	if m.GetKYCFn != nil {
		return m.GetKYCFn(ctx, farmerID)
	}
	return nil, domain.ErrKYCNotFound
}

func (m *Repo) CreateKYC(ctx context.Context, k *domain.KYCDetails) error {
	if m.CreateKYCFn != nil {
		return m.CreateKYCFn(ctx, k)
	}
	return nil
}

func (m *Repo) MarkKYCVerified(ctx context.Context, farmerID, aadhar, pan string) error {
	if m.MarkKYCVerifiedFn != nil {
		return m.MarkKYCVerifiedFn(ctx, farmerID, aadhar, pan)
	}
	return nil
}
