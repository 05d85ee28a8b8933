package coupons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

// SellerCodeConstraint keeps coupon codes unique per seller.
const SellerCodeConstraint = "ux_coupons_seller_code"

type Repository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, sellerID uuid.UUID, code string) (*models.Coupon, error)
	List(ctx context.Context, sellerID *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Coupon, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode matches the (seller, code) pair regardless of state; callers
// decide whether the coupon is usable.
func (r *repository) FindByCode(ctx context.Context, sellerID uuid.UUID, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND code = ?", sellerID, code).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) List(ctx context.Context, sellerID *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Coupon, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Coupon{})
	if sellerID != nil {
		q = q.Where("seller_id = ?", *sellerID)
	}
	if filters.IsDeleted != nil {
		q = q.Where("is_deleted = ?", *filters.IsDeleted)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Coupon
	err := params.Scope(q.Session(&gorm.Session{})).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Coupon{})
	return res.RowsAffected, res.Error
}

// CountBySeller counts live coupons for the dashboard.
func (r *repository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Count(&total).Error
	return total, err
}
