package disbursementmock

import (
	"context"

	domain "agriloan-backend/internal/domain/disbursement"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn func(ctx context.Context, d *domain.Disbursement) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}
