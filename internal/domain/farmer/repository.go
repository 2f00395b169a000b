package farmer

import "context"

type Repository interface {
	Create(ctx context.Context, f *Farmer) error
	GetByID(ctx context.Context, farmerID string) (*Farmer, error)
	GetByEmail(ctx context.Context, email string) (*Farmer, error)

	// GetKYC returns ErrKYCNotFound when the farmer has not completed KYC.
	GetKYC(ctx context.Context, farmerID string) (*KYCDetails, error)
	CreateKYC(ctx context.Context, k *KYCDetails) error
	// MarkKYCVerified sets kyc_verified and the identity numbers in one update.
	MarkKYCVerified(ctx context.Context, farmerID, aadhar, pan string) error
}
