package tickets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, sellerID *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Ticket, int64, error)
	Save(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Omit("Seller").Create(ticket).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) List(ctx context.Context, sellerID *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Ticket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Ticket{})
	if sellerID != nil {
		q = q.Where("seller_id = ?", *sellerID)
	}
	if filters.Closed != nil {
		q = q.Where("closed = ?", *filters.Closed)
	}
	if filters.IsDeleted != nil {
		q = q.Where("is_deleted = ?", *filters.IsDeleted)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Ticket
	err := params.Scope(q.Session(&gorm.Session{})).
		Preload("Seller").
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Save writes the whole row; replies are a JSON column and need the struct
// path so the serializer runs.
func (r *repository) Save(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Omit("Seller").Save(ticket).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Ticket{})
	return res.RowsAffected, res.Error
}

// CountBySeller counts live tickets for the dashboard.
func (r *repository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Count(&total).Error
	return total, err
}
