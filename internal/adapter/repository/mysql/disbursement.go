package mysql

import (
	"context"

	disbursementDomain "agriloan-backend/internal/domain/disbursement"

	"gorm.io/gorm"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *disbursementDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}
