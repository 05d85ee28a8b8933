package sellers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

// UsernameConstraint is the partial unique index over live usernames.
const UsernameConstraint = "ux_sellers_username"

// Repository defines persistence operations for sellers.
type Repository interface {
	Create(ctx context.Context, seller *models.Seller) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindByUsername(ctx context.Context, username string) (*models.Seller, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Seller, int64, error)
	Save(ctx context.Context, seller *models.Seller) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

// FindByID returns the seller even when soft-deleted so admins can inspect it.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*models.Seller, error) {
	var seller models.Seller
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_deleted = ?", strings.ToLower(strings.TrimSpace(username)), false).
		First(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Seller, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Seller{})
	if !filters.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if filters.IsOnboarded != nil {
		q = q.Where("is_onboarded = ?", *filters.IsOnboarded)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Seller
	err := params.Scope(q.Session(&gorm.Session{})).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Save(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).Save(seller).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}
