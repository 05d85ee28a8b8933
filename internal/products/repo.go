package products

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

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) CreateMany(ctx context.Context, products []models.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(&products, createBatchSize)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindMatching(ctx context.Context, criteria Criteria) ([]models.Product, error) {
	var rows []models.Product
	err := applyCriteria(r.db.WithContext(ctx).Model(&models.Product{}), criteria).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, criteria Criteria, params pagination.Params) ([]models.Product, int64, error) {
	base := applyCriteria(r.db.WithContext(ctx).Model(&models.Product{}), criteria)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
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
	err := applyCriteria(r.db.WithContext(ctx).Model(&models.Product{}), criteria).Count(&total).Error
	return total, err
}

// Search returns the id, name and brand of a seller's live products, ordered
// by name.
func (r *repository) Search(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "name", "brand").
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateFields(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error) {
	if len(ids) == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id IN ?", ids).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// CountBySeller returns the number of live products a seller lists.
func (r *repository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return r.Count(ctx, Criteria{SellerID: &sellerID})
}

// CountAll returns the number of live products on the platform.
func (r *repository) CountAll(ctx context.Context) (int64, error) {
	return r.Count(ctx, Criteria{})
}

func applyCriteria(tx *gorm.DB, c Criteria) *gorm.DB {
	if len(c.IDs) > 0 {
		tx = tx.Where("id IN ?", c.IDs)
	}
	if c.SellerID != nil {
		tx = tx.Where("seller_id = ?", *c.SellerID)
	}
	if c.Category != "" {
		tx = tx.Where("category = ?", c.Category)
	}
	if !c.IncludeDeleted {
		tx = tx.Where("is_deleted = ?", false)
	}
	return tx
}
