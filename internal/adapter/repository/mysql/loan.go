package mysql

import (
	"context"
	"errors"

	loanDomain "agriloan-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanDomain.LoanApplication, error) {
	var out loanDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Preload("Farmer.KYC").
		Where("application_id = ?", applicationID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanDomain.LoanApplication, error) {
	var out loanDomain.LoanApplication
	res := forUpdate(r.db.WithContext(ctx)).
		Where("application_id = ?", applicationID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) ListByFarmer(ctx context.Context, farmerID string) ([]loanDomain.LoanApplication, error) {
	var out []loanDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Preload("Lender").
		Where("farmer_id = ?", farmerID).
		Order("application_date DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByLender(ctx context.Context, lenderID string) ([]loanDomain.LoanApplication, error) {
	var out []loanDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("lender_id = ?", lenderID).
		Order("application_date DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListAnchorCandidates(ctx context.Context, statuses []loanDomain.Status, limit int) ([]loanDomain.LoanApplication, error) {
	var out []loanDomain.LoanApplication
	q := r.db.WithContext(ctx).
		Preload("Farmer.KYC").
		Where("status IN ?", statuses).
		Where("(blockchain_hash IS NULL OR blockchain_hash = '')").
		Order("application_date ASC, application_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	res := q.Find(&out)
	return out, res.Error
}

func (r *LoanRepository) SetBlockchainHash(ctx context.Context, applicationID, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanApplication{}).
		Where("application_id = ?", applicationID).
		Where("(blockchain_hash IS NULL OR blockchain_hash = '')").
		UpdateColumn("blockchain_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	// Nothing updated: either gone or stamped by someone else.
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&loanDomain.LoanApplication{}).
		Where("application_id = ?", applicationID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return loanDomain.ErrNotFound
	}
	return loanDomain.ErrAlreadyAnchored
}

func (r *LoanRepository) AttachCollateral(ctx context.Context, d *loanDomain.CollateralDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// forUpdate adds SELECT ... FOR UPDATE; SQLite has no row locks and rejects the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
