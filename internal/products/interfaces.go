package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

// Repository defines persistence operations for the products table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	CreateMany(ctx context.Context, products []models.Product) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindMatching(ctx context.Context, criteria Criteria) ([]models.Product, error)
	List(ctx context.Context, criteria Criteria, params pagination.Params) ([]models.Product, int64, error)
	Count(ctx context.Context, criteria Criteria) (int64, error)
	Search(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Product, error)
	UpdateFields(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}
