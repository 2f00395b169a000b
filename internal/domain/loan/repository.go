package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *LoanApplication) error
	// GetByApplicationID preloads the farmer and its KYC record.
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	// Row-locked read for status transitions; call inside a unit of work.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	// Save persists business fields only; associations are never written.
	Save(ctx context.Context, l *LoanApplication) error

	ListByFarmer(ctx context.Context, farmerID string) ([]LoanApplication, error)
	ListByLender(ctx context.Context, lenderID string) ([]LoanApplication, error)

	// ListAnchorCandidates returns applications in one of statuses with an
	// empty blockchain hash, oldest first, farmer and KYC preloaded.
	ListAnchorCandidates(ctx context.Context, statuses []Status, limit int) ([]LoanApplication, error)
	// SetBlockchainHash is a single-column update keyed by application id that
	// only succeeds while the hash is still empty.
	SetBlockchainHash(ctx context.Context, applicationID, hash string) error

	AttachCollateral(ctx context.Context, d *CollateralDocument) error
}
