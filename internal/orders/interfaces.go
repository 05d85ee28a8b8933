package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateMany(ctx context.Context, orders []models.Order) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindMatching(ctx context.Context, criteria Criteria) ([]models.Order, error)
	List(ctx context.Context, criteria Criteria, params pagination.Params) ([]models.Order, int64, error)
	Count(ctx context.Context, criteria Criteria) (int64, error)
	UpdateFields(ctx context.Context, ids []uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)
}
