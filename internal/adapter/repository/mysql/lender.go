package mysql

import (
	"context"
	"errors"

	lenderDomain "agriloan-backend/internal/domain/lender"

	"gorm.io/gorm"
)

type LenderRepository struct{ db *gorm.DB }

func NewLenderRepository(db *gorm.DB) *LenderRepository { return &LenderRepository{db: db} }

func (r *LenderRepository) Create(ctx context.Context, l *lenderDomain.Lender) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LenderRepository) GetByID(ctx context.Context, lenderID string) (*lenderDomain.Lender, error) {
	var out lenderDomain.Lender
	res := r.db.WithContext(ctx).Where("lender_id = ?", lenderID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, lenderDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LenderRepository) GetByEmail(ctx context.Context, email string) (*lenderDomain.Lender, error) {
	var out lenderDomain.Lender
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, lenderDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LenderRepository) List(ctx context.Context) ([]lenderDomain.Summary, error) {
	var out []lenderDomain.Summary
	res := r.db.WithContext(ctx).
		Model(&lenderDomain.Lender{}).
		Select("lender_id", "name").
		Order("name ASC").
		Scan(&out)
	return out, res.Error
}

func (r *LenderRepository) IncrementFundedLoans(ctx context.Context, lenderID string) error {
	res := r.db.WithContext(ctx).
		Model(&lenderDomain.Lender{}).
		Where("lender_id = ?", lenderID).
		UpdateColumn("total_funded_loans", gorm.Expr("total_funded_loans + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lenderDomain.ErrNotFound
	}
	return nil
}
