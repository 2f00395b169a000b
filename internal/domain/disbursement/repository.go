package disbursement

import "context"

type Repository interface {
	// Create a new disbursement (DB uniqueness ensures at most one per application)
	Create(ctx context.Context, d *Disbursement) error
}
