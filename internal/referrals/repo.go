package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

// PairConstraint allows one referral per (referring user, referred seller).
const PairConstraint = "ux_referrals_user_seller"

type Repository interface {
	Create(ctx context.Context, referral *models.Referral) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Referral, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Omit("ReferringUser", "ReferredSeller").Create(referral).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	var referral models.Referral
	err := r.withRelations(ctx).Where("id = ?", id).First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Referral, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Referral{})
	if !filters.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if filters.ReferringUserID != nil {
		q = q.Where("referring_user_id = ?", *filters.ReferringUserID)
	}
	if filters.ReferredSellerID != nil {
		q = q.Where("referred_seller_id = ?", *filters.ReferredSellerID)
	}
	if filters.Onboarded != nil {
		q = q.Where("onboarded = ?", *filters.Onboarded)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Referral
	err := params.Scope(q.Session(&gorm.Session{})).
		Preload("ReferringUser").
		Preload("ReferredSeller").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Referral{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Referral{})
	return res.RowsAffected, res.Error
}

func (r *repository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ReferringUser").Preload("ReferredSeller")
}
