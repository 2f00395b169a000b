package kyc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/uow"
	"agriloan-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

var ErrMissingDocuments = errors.New("aadhar and pan are required")

type CompleteInput struct {
	FarmerID string
	Aadhar   string
	PAN      string
}

type Usecase struct {
	tx  uow.UnitOfWork
	log *logrus.Logger
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{tx: tx, log: log, now: time.Now}
}

// Hash is the commitment written to the ledger: hex sha256 of "aadhar:pan".
func Hash(aadhar, pan string) string {
	sum := sha256.Sum256([]byte(aadhar + ":" + pan))
	return hex.EncodeToString(sum[:])
}

// Complete records a verified KYC for the farmer. It can succeed only once.
func (u *Usecase) Complete(ctx context.Context, in CompleteInput) (*farmer.KYCDetails, error) {
	aadhar := strings.TrimSpace(in.Aadhar)
	pan := strings.ToUpper(strings.TrimSpace(in.PAN))
	if aadhar == "" || pan == "" {
		return nil, ErrMissingDocuments
	}

	var out *farmer.KYCDetails
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Farmers.GetByID(ctx, in.FarmerID)
		if err != nil {
			return err
		}
		if f.KYCVerified {
			return farmer.ErrAlreadyVerified
		}
		if _, err := r.Farmers.GetKYC(ctx, in.FarmerID); err == nil {
			return farmer.ErrAlreadyVerified
		} else if !errors.Is(err, farmer.ErrKYCNotFound) {
			return err
		}

		h := Hash(aadhar, pan)
		k := &farmer.KYCDetails{
			KYCID:              id.New(),
			FarmerID:           in.FarmerID,
			VerificationStatus: farmer.VerificationVerified,
			VerificationDate:   u.now().UTC(),
			KYCHash:            h,
			IdentityDocuments:  h,
		}
		if err := r.Farmers.CreateKYC(ctx, k); err != nil {
			return err
		}
		if err := r.Farmers.MarkKYCVerified(ctx, in.FarmerID, aadhar, pan); err != nil {
			return err
		}
		out = k
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("farmer_id", in.FarmerID).Info("kyc: completed")
	return out, nil
}
