package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

const createBatchSize = 100

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateMany(ctx context.Context, orders []models.Order) (int64, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(&orders, createBatchSize)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindMatching(ctx context.Context, criteria Criteria) ([]models.Order, error) {
	var rows []models.Order
	err := applyCriteria(r.db.WithContext(ctx).Model(&models.Order{}), criteria).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, criteria Criteria, params pagination.Params) ([]models.Order, int64, error) {
	base := applyCriteria(r.db.WithContext(ctx).Model(&models.Order{}), criteria)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := params.Scope(base.Session(&gorm.Session{})).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Count(ctx context.Context, criteria Criteria) (int64, error) {
	var total int64
	err := applyCriteria(r.db.WithContext(ctx).Model(&models.Order{}), criteria).Count(&total).Error
	return total, err
}

func (r *repository) UpdateFields(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error) {
	if len(ids) == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", ids).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

func applyCriteria(tx *gorm.DB, c Criteria) *gorm.DB {
	if len(c.IDs) > 0 {
		tx = tx.Where("id IN ?", c.IDs)
	}
	if c.SellerID != nil {
		tx = tx.Where("seller_id = ?", *c.SellerID)
	}
	if c.CustomerID != nil {
		tx = tx.Where("customer_id = ?", *c.CustomerID)
	}
	if c.Status != nil {
		tx = tx.Where("status = ?", *c.Status)
	}
	switch c.CourierMode {
	case CourierEquals:
		tx = tx.Where("courier = ?", c.Courier)
	case CourierNotLocal:
		tx = tx.Where("courier <> ?", CourierLocal)
	}
	if c.Date != "" {
		tx = tx.Where("date = ?", c.Date)
	}
	if !c.IncludeDeleted {
		tx = tx.Where("is_deleted = ?", false)
	}
	return tx
}
