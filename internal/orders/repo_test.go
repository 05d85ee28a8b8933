package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

func seedOrder(t *testing.T, repo Repository, sellerID, customerID uuid.UUID, courier string, date string) models.Order {
	t.Helper()
	order := models.Order{
		CustomerID:  customerID,
		SellerID:    sellerID,
		OrderItems:  models.OrderItems{{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(10)}},
		TotalAmount: decimal.NewFromInt(10),
		Charge:      decimal.NewFromInt(1),
		Status:      enums.OrderStatusPlaced,
		Courier:     courier,
		Date:        date,
	}
	require.NoError(t, repo.Create(context.Background(), &order))
	return order
}

func TestRepositoryCourierFilters(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	seller := uuid.New()

	seedOrder(t, repo, seller, uuid.New(), "Local", "03/01/2024")
	seedOrder(t, repo, seller, uuid.New(), "Delhivery", "03/01/2024")
	seedOrder(t, repo, seller, uuid.New(), "Shiprocket", "03/02/2024")

	local, err := repo.Count(ctx, Criteria{CourierMode: CourierEquals, Courier: CourierLocal})
	require.NoError(t, err)
	assert.EqualValues(t, 1, local)

	carriers, err := repo.Count(ctx, Criteria{CourierMode: CourierNotLocal})
	require.NoError(t, err)
	assert.EqualValues(t, 2, carriers)

	byDate, err := repo.Count(ctx, Criteria{Date: "03/01/2024"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byDate)
}

func TestRepositoryListPaginatesAndHidesDeleted(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	seller := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, seedOrder(t, repo, seller, uuid.New(), "Local", "03/01/2024").ID)
	}
	affected, err := repo.UpdateFields(ctx, ids[:1], map[string]any{"is_deleted": true})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	rows, total, err := repo.List(ctx, Criteria{SellerID: &seller}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 1)

	_, total, err = repo.List(ctx, Criteria{SellerID: &seller, IncludeDeleted: true}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestRepositoryUpdateStoresOrderItems(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, uuid.New(), uuid.New(), "Local", "03/01/2024")

	items := models.OrderItems{
		{ProductID: uuid.New(), Quantity: 2, Price: decimal.RequireFromString("12.50")},
		{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(5)},
	}
	_, err := repo.UpdateFields(ctx, []uuid.UUID{order.ID}, map[string]any{"order_items": items})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 2)
	assert.Equal(t, 2, reloaded.OrderItems[0].Quantity)
	assert.True(t, reloaded.OrderItems[0].Price.Equal(decimal.RequireFromString("12.5")))
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, uuid.New(), uuid.New(), "Local", "03/01/2024")

	affected, err := repo.Delete(ctx, []uuid.UUID{order.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = repo.FindByID(ctx, order.ID)
	require.Error(t, err)
}
