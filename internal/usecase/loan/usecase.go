package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"agriloan-backend/internal/domain/disbursement"
	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"
	"agriloan-backend/internal/domain/uow"
	"agriloan-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	loans   loan.Repository
	farmers farmer.Repository
	lenders lender.Repository
	uow     uow.UnitOfWork
	log     *logrus.Logger
	now     func() time.Time
}

func NewUsecase(loans loan.Repository, farmers farmer.Repository, lenders lender.Repository, tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{loans: loans, farmers: farmers, lenders: lenders, uow: tx, log: log, now: time.Now}
}

// Apply creates a pending application. When the farmer has completed KYC the
// KYC record is attached as collateral in the same transaction.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*ApplicationDTO, error) {
	if in.FarmerID == "" || strings.TrimSpace(in.LenderID) == "" || !in.Amount.IsPositive() || in.TenureMonths <= 0 {
		return nil, loan.ErrInvalidInput
	}

	f, err := u.farmers.GetByID(ctx, in.FarmerID)
	if errors.Is(err, farmer.ErrNotFound) {
		return nil, ErrFarmerNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := u.lenders.GetByID(ctx, in.LenderID); err != nil {
		if errors.Is(err, lender.ErrNotFound) {
			return nil, ErrLenderNotFound
		}
		return nil, err
	}

	lenderID := in.LenderID
	app := &loan.LoanApplication{
		ApplicationID:   id.New(),
		FarmerID:        f.FarmerID,
		LenderID:        &lenderID,
		Amount:          in.Amount,
		TenureMonths:    in.TenureMonths,
		Purpose:         in.Purpose,
		Status:          loan.StatusPending,
		ApplicationDate: u.now().UTC(),
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, app); err != nil {
			return err
		}
		if f.KYC == nil {
			return nil
		}
		return r.Loans.AttachCollateral(ctx, &loan.CollateralDocument{
			DocumentID:    f.KYC.KYCID,
			ApplicationID: app.ApplicationID,
			DocumentType:  collateralType(f),
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"application_id": app.ApplicationID,
		"farmer_id":      app.FarmerID,
		"lender_id":      lenderID,
	}).Info("loan: applied")
	return toDTO(app), nil
}

func collateralType(f *farmer.Farmer) string {
	switch {
	case f.PANNumber != nil && *f.PANNumber != "":
		return "pan"
	case f.AadharNumber != nil && *f.AadharNumber != "":
		return "aadhar"
	default:
		return "unknown"
	}
}

// guard loads the locked application inside the tx and checks ownership and
// source state before fn mutates it.
func (u *Usecase) guard(ctx context.Context, applicationID, lenderID string, from loan.Status, fn func(r uow.Repos, l *loan.LoanApplication) error) error {
	if strings.TrimSpace(applicationID) == "" {
		return loan.ErrInvalidInput
	}
	return u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, l *loan.LoanApplication) error {
		if !l.AssignedTo(lenderID) {
			return loan.ErrNotAuthorized
		}
		if l.Status != from {
			return loan.ErrInvalidTransition
		}
		return fn(r, l)
	})
}

// Approve moves pending → approved. due_date is recomputed from now using the
// effective tenure.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*ApplicationDTO, error) {
	if in.InterestRate != nil && (in.InterestRate.LessThan(loan.MinInterestRate) || in.InterestRate.GreaterThan(loan.MaxInterestRate)) {
		return nil, loan.ErrInterestRateOutOfRange
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, loan.ErrInvalidInput
	}
	if in.TenureMonths != nil && *in.TenureMonths <= 0 {
		return nil, loan.ErrInvalidInput
	}

	var out *loan.LoanApplication
	err := u.guard(ctx, in.ApplicationID, in.LenderID, loan.StatusPending, func(r uow.Repos, l *loan.LoanApplication) error {
		if in.Amount != nil {
			l.Amount = *in.Amount
		}
		if in.InterestRate != nil {
			rate := *in.InterestRate
			l.InterestRate = &rate
		}
		if in.TenureMonths != nil {
			l.TenureMonths = *in.TenureMonths
		}
		due := u.now().UTC().AddDate(0, l.TenureMonths, 0)
		l.DueDate = &due
		l.Status = loan.StatusApproved
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	u.log.WithField("application_id", out.ApplicationID).Info("loan: approved")
	return toDTO(out), nil
}

// Reject moves pending → rejected. An empty reason is stored as "Not provided".
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*ApplicationDTO, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = loan.DefaultRejectionReason
	}

	var out *loan.LoanApplication
	err := u.guard(ctx, in.ApplicationID, in.LenderID, loan.StatusPending, func(r uow.Repos, l *loan.LoanApplication) error {
		l.Status = loan.StatusRejected
		l.RejectionReason = &reason
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	u.log.WithField("application_id", out.ApplicationID).Info("loan: rejected")
	return toDTO(out), nil
}

// Disburse moves approved → disbursed, records the disbursement and bumps the
// lender's funded counter, all in one transaction.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*DisbursementDTO, error) {
	var d *disbursement.Disbursement
	err := u.guard(ctx, in.ApplicationID, in.LenderID, loan.StatusApproved, func(r uow.Repos, l *loan.LoanApplication) error {
		d = &disbursement.Disbursement{
			DisbursementID:  id.New(),
			ApplicationID:   l.ApplicationID,
			LenderID:        in.LenderID,
			Amount:          l.Amount,
			Status:          disbursement.StatusCompleted,
			TransactionHash: id.NewTxnRef(),
			DisbursedAt:     u.now().UTC(),
		}
		if err := r.Disbursements.Create(ctx, d); err != nil {
			return err
		}
		l.Status = loan.StatusDisbursed
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return r.Lenders.IncrementFundedLoans(ctx, in.LenderID)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"application_id":   d.ApplicationID,
		"transaction_hash": d.TransactionHash,
	}).Info("loan: disbursed")
	return &DisbursementDTO{
		DisbursementID:  d.DisbursementID,
		ApplicationID:   d.ApplicationID,
		LenderID:        d.LenderID,
		Amount:          d.Amount,
		Status:          d.Status,
		TransactionHash: d.TransactionHash,
		DisbursedAt:     d.DisbursedAt,
	}, nil
}

// ListForFarmer returns the farmer's applications, newest first.
func (u *Usecase) ListForFarmer(ctx context.Context, farmerID string) ([]ApplicationDTO, error) {
	apps, err := u.loans.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		dto := toDTO(&apps[i])
		if l := apps[i].Lender; l != nil {
			dto.Lender = &LenderRef{LenderID: l.LenderID, Name: l.Name, Email: l.Email}
		}
		out = append(out, *dto)
	}
	return out, nil
}

// ListForLender returns applications assigned to the lender, newest first.
func (u *Usecase) ListForLender(ctx context.Context, lenderID string) ([]ApplicationDTO, error) {
	apps, err := u.loans.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		dto := toDTO(&apps[i])
		if f := apps[i].Farmer; f != nil {
			dto.Farmer = &FarmerRef{FarmerID: f.FarmerID, Name: f.Name, Email: f.Email, Location: f.Location, KYCVerified: f.KYCVerified}
		}
		out = append(out, *dto)
	}
	return out, nil
}

func toDTO(l *loan.LoanApplication) *ApplicationDTO {
	return &ApplicationDTO{
		ApplicationID:   l.ApplicationID,
		FarmerID:        l.FarmerID,
		LenderID:        l.LenderID,
		Amount:          l.Amount,
		TenureMonths:    l.TenureMonths,
		InterestRate:    l.InterestRate,
		Purpose:         l.Purpose,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		ApplicationDate: l.ApplicationDate,
		DueDate:         l.DueDate,
		BlockchainHash:  l.BlockchainHash,
	}
}
