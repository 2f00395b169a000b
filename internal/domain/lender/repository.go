package lender

import "context"

type Repository interface {
	Create(ctx context.Context, l *Lender) error
	GetByID(ctx context.Context, lenderID string) (*Lender, error)
	GetByEmail(ctx context.Context, email string) (*Lender, error)
	List(ctx context.Context) ([]Summary, error)

	// IncrementFundedLoans bumps total_funded_loans atomically in SQL.
	IncrementFundedLoans(ctx context.Context, lenderID string) error
}
