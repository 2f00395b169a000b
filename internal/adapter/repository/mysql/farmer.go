package mysql

import (
	"context"
	"errors"

	farmerDomain "agriloan-backend/internal/domain/farmer"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FarmerRepository struct{ db *gorm.DB }

func NewFarmerRepository(db *gorm.DB) *FarmerRepository { return &FarmerRepository{db: db} }

func (r *FarmerRepository) Create(ctx context.Context, f *farmerDomain.Farmer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

func (r *FarmerRepository) GetByID(ctx context.Context, farmerID string) (*farmerDomain.Farmer, error) {
	return r.first(ctx, "farmer_id = ?", farmerID)
}

func (r *FarmerRepository) GetByEmail(ctx context.Context, email string) (*farmerDomain.Farmer, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *FarmerRepository) first(ctx context.Context, where string, arg any) (*farmerDomain.Farmer, error) {
	var out farmerDomain.Farmer
	res := r.db.WithContext(ctx).Preload("KYC").Where(where, arg).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, farmerDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *FarmerRepository) GetKYC(ctx context.Context, farmerID string) (*farmerDomain.KYCDetails, error) {
	var out farmerDomain.KYCDetails
	res := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, farmerDomain.ErrKYCNotFound
	}
	return &out, res.Error
}

func (r *FarmerRepository) CreateKYC(ctx context.Context, k *farmerDomain.KYCDetails) error {
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *FarmerRepository) MarkKYCVerified(ctx context.Context, farmerID, aadhar, pan string) error {
	res := r.db.WithContext(ctx).
		Model(&farmerDomain.Farmer{}).
		Where("farmer_id = ?", farmerID).
		Updates(map[string]any{
			"kyc_verified":  true,
			"aadhar_number": aadhar,
			"pan_number":    pan,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return farmerDomain.ErrNotFound
	}
	return nil
}
