package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

type catalogFixture struct {
	svc    Service
	repo   Repository
	seller models.Seller
	other  models.Seller
}

func newCatalog(t *testing.T) catalogFixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()

	seller := models.Seller{ShopName: "Loom House", Username: "loomhouse", Email: "loom@x.test", PasswordHash: "x"}
	other := models.Seller{ShopName: "Tide", Username: "tide", Email: "tide@x.test", PasswordHash: "x"}
	require.NoError(t, conn.Create(&seller).Error)
	require.NoError(t, conn.Create(&other).Error)

	repo := NewRepository(conn)
	svc, err := NewService(repo, sellers.NewRepository(conn), client)
	require.NoError(t, err)
	return catalogFixture{svc: svc, repo: repo, seller: seller, other: other}
}

func (f catalogFixture) sellerScope() scope.Scope {
	return scope.Seller(f.seller.ID, uuid.New())
}

func brand(v string) *string { return &v }

func TestNewServiceRequiresDependencies(t *testing.T) {
	client := dbtest.Client(t)
	repo := NewRepository(client.DB())
	lookup := sellers.NewRepository(client.DB())

	_, err := NewService(nil, lookup, client)
	require.Error(t, err)
	_, err = NewService(repo, nil, client)
	require.Error(t, err)
	_, err = NewService(repo, lookup, nil)
	require.Error(t, err)
}

func TestCreatePinsSellerScope(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	dto, err := f.svc.Create(ctx, sc, CreateProductInput{
		SellerID: f.other.ID,
		Name:     "  Kurta ",
		Category: "ethnic",
		Brand:    brand("Loom"),
		Sizes:    []string{"S", "M"},
		Price:    decimal.NewFromInt(899),
		Stock:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, f.seller.ID, dto.SellerID)
	assert.Equal(t, "Kurta", dto.Name)
	assert.Equal(t, []string{"S", "M"}, dto.Sizes)
	assert.Equal(t, []string{}, dto.Tags)
	require.NotNil(t, dto.AddedBy)
	assert.Equal(t, sc.Actor, *dto.AddedBy)

	stored, err := f.repo.FindByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"S", "M"}, stored.Sizes)
	assert.True(t, stored.Price.Equal(decimal.NewFromInt(899)))
}

func TestCreateValidation(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, scope.Admin(uuid.New()), CreateProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.sellerScope(), CreateProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, scope.Customer(uuid.New()), CreateProductInput{Name: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestBulkInsert(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	_, err := f.svc.BulkInsert(ctx, sc, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))

	_, err = f.svc.BulkInsert(ctx, sc, []CreateProductInput{
		{Name: "ok", Price: decimal.NewFromInt(1)},
		{Name: " ", Price: decimal.NewFromInt(1)},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, pkgerrors.As(err).Message(), "product 1")

	res, err := f.svc.BulkInsert(ctx, sc, []CreateProductInput{
		{Name: "Kurta", Price: decimal.NewFromInt(899)},
		{Name: "Saree", Price: decimal.NewFromInt(2499)},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Count)

	count, err := f.repo.CountBySeller(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestSellerCannotReachOtherSellersProducts(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()

	theirs, err := f.svc.Create(ctx, scope.Admin(uuid.New()), CreateProductInput{SellerID: f.other.ID, Name: "Theirs", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.sellerScope(), theirs.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.PartialUpdate(ctx, f.sellerScope(), theirs.ID, PatchProductInput{Name: brand("Mine")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, f.sellerScope(), theirs.ID), pkgerrors.CodeNotFound))

	res, err := f.svc.SoftDeleteMany(ctx, f.sellerScope(), []uuid.UUID{theirs.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Count)

	got, err := f.svc.Get(ctx, scope.Admin(uuid.New()), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.Name)
	assert.False(t, got.IsDeleted)
}

func TestUpdateAndPartialUpdate(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	created, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "Kurta", Category: "ethnic", Tags: []string{"cotton"}, Price: decimal.NewFromInt(899), Stock: 2})
	require.NoError(t, err)

	_, err = f.svc.PartialUpdate(ctx, sc, created.ID, PatchProductInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stock := 10
	patched, err := f.svc.PartialUpdate(ctx, sc, created.ID, PatchProductInput{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 10, patched.Stock)
	assert.Equal(t, "Kurta", patched.Name)
	assert.Equal(t, []string{"cotton"}, patched.Tags)

	replaced, err := f.svc.Update(ctx, sc, created.ID, UpdateProductInput{Name: "Kurta Set", Category: "festive", Price: decimal.NewFromInt(1299)})
	require.NoError(t, err)
	assert.Equal(t, "Kurta Set", replaced.Name)
	assert.Equal(t, "festive", replaced.Category)
	assert.Equal(t, 0, replaced.Stock)
	assert.Equal(t, []string{}, replaced.Tags)
	assert.True(t, replaced.Price.Equal(decimal.NewFromInt(1299)))
	assert.Equal(t, f.seller.ID, replaced.SellerID)
}

func TestBulkUpdateRequiresFilter(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()
	stock := 0

	_, err := f.svc.BulkUpdate(ctx, sc, BulkUpdateFilter{}, PatchProductInput{Stock: &stock})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))

	ethnic := "ethnic"
	_, err = f.svc.BulkUpdate(ctx, sc, BulkUpdateFilter{Category: &ethnic}, PatchProductInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBulkUpdateStaysInsideSellerScope(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	admin := scope.Admin(uuid.New())

	for _, in := range []CreateProductInput{
		{SellerID: f.seller.ID, Name: "A", Category: "ethnic", Price: decimal.NewFromInt(1), Stock: 5},
		{SellerID: f.seller.ID, Name: "B", Category: "ethnic", Price: decimal.NewFromInt(1), Stock: 5},
		{SellerID: f.seller.ID, Name: "C", Category: "western", Price: decimal.NewFromInt(1), Stock: 5},
		{SellerID: f.other.ID, Name: "D", Category: "ethnic", Price: decimal.NewFromInt(1), Stock: 5},
	} {
		_, err := f.svc.Create(ctx, admin, in)
		require.NoError(t, err)
	}

	ethnic := "ethnic"
	stock := 0
	// A seller naming another seller in the filter is still pinned to itself.
	res, err := f.svc.BulkUpdate(ctx, f.sellerScope(), BulkUpdateFilter{Category: &ethnic, SellerID: &f.other.ID}, PatchProductInput{Stock: &stock})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Count)

	page, err := f.svc.List(ctx, admin, ListFilters{Category: "ethnic"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	for _, p := range page.Data {
		if p.SellerID == f.seller.ID {
			assert.Equal(t, 0, p.Stock, p.Name)
		} else {
			assert.Equal(t, 5, p.Stock, p.Name)
		}
	}
}

func TestSoftDeleteAndHardDelete(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	a, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "A", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "B", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	c, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "C", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	deleted, err := f.svc.SoftDelete(ctx, sc, a.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	count, err := f.svc.Count(ctx, sc, ListFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	count, err = f.svc.Count(ctx, sc, ListFilters{IncludeDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = f.svc.SoftDeleteMany(ctx, sc, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))

	res, err := f.svc.SoftDeleteMany(ctx, sc, []uuid.UUID{b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Count)

	// Hard delete reaches soft-deleted rows too.
	res, err = f.svc.DeleteMany(ctx, sc, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Count)

	require.NoError(t, f.svc.Delete(ctx, sc, c.ID))
	_, err = f.svc.Get(ctx, sc, c.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.List(ctx, sc, ListFilters{IncludeDeleted: true}, pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListBySellerUsername(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	_, err := f.svc.ListBySellerUsername(ctx, "nobody", "", pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Seller not found with the provided username.", pkgerrors.As(err).Message())

	_, err = f.svc.ListBySellerUsername(ctx, "loomhouse", "", pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, sc, CreateProductInput{Name: "Kurta", Category: "ethnic", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, sc, CreateProductInput{Name: "Jeans", Category: "western", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	hidden, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "Old", Category: "ethnic", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = f.svc.SoftDelete(ctx, sc, hidden.ID)
	require.NoError(t, err)

	page, err := f.svc.ListBySellerUsername(ctx, "LoomHouse", "", pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.ItemCount)
	assert.Len(t, page.Data, 1)

	page, err = f.svc.ListBySellerUsername(ctx, "loomhouse", "ethnic", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Kurta", page.Data[0].Name)
}

func TestRelatedFallsBackToWholeCatalog(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	admin := scope.Admin(uuid.New())

	_, err := f.svc.Create(ctx, admin, CreateProductInput{SellerID: f.seller.ID, Name: "Kurta", Category: "ethnic", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, CreateProductInput{SellerID: f.other.ID, Name: "Board", Category: "surf", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	page, err := f.svc.Related(ctx, "loomhouse", "ethnic", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Kurta", page.Data[0].Name)

	page, err = f.svc.Related(ctx, "loomhouse", "surf", pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	_, err = f.svc.Related(ctx, "nobody", "ethnic", pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSearch(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	_, err := f.svc.Search(ctx, "loomhouse")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, sc, CreateProductInput{Name: "Saree", Brand: brand("Loom"), Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, sc, CreateProductInput{Name: "Kurta", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	items, err := f.svc.Search(ctx, "loomhouse")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Kurta", items[0].Name)
	assert.Nil(t, items[0].Brand)
	assert.Equal(t, "Saree", items[1].Name)
	require.NotNil(t, items[1].Brand)
	assert.Equal(t, "Loom", *items[1].Brand)
}

func TestGetForSeller(t *testing.T) {
	f := newCatalog(t)
	ctx := context.Background()
	sc := f.sellerScope()

	product, err := f.svc.Create(ctx, sc, CreateProductInput{Name: "Kurta", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	got, err := f.svc.GetForSeller(ctx, product.ID, "loomhouse")
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)

	_, err = f.svc.GetForSeller(ctx, product.ID, "tide")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "This Product is not found from this seller", pkgerrors.As(err).Message())

	_, err = f.svc.GetForSeller(ctx, uuid.New(), "loomhouse")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Product not found", pkgerrors.As(err).Message())

	_, err = f.svc.SoftDelete(ctx, sc, product.ID)
	require.NoError(t, err)
	_, err = f.svc.GetForSeller(ctx, product.ID, "loomhouse")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Product not found", pkgerrors.As(err).Message())
}
