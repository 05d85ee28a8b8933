package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type fixture struct {
	conn   *gorm.DB
	svc    Service
	repo   Repository
	seller models.Seller
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	seller := models.Seller{
		ShopName:     "Spice Route",
		Username:     "spiceroute",
		Email:        "hi@spiceroute.test",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(&seller).Error)

	repo := NewRepository(conn)
	svc, err := NewService(repo, sellers.NewRepository(conn))
	require.NoError(t, err)
	return fixture{conn: conn, svc: svc, repo: repo, seller: seller}
}

func flatInput(code string) CreateCouponInput {
	return CreateCouponInput{
		Code:          code,
		DiscountType:  "flat",
		DiscountValue: decimal.NewFromInt(50),
	}
}

func TestCreateForcesSellerFromScope(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())
	other := uuid.New()

	input := flatInput(" SAVE50 ")
	input.SellerID = &other
	dto, err := f.svc.Create(context.Background(), sc, input)
	require.NoError(t, err)
	assert.Equal(t, f.seller.ID, dto.SellerID)
	assert.Equal(t, "SAVE50", dto.Code)
	assert.True(t, dto.IsActive)
	assert.True(t, dto.MinOrderValue.IsZero())
}

func TestCreateAdminNeedsSeller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), scope.Admin(uuid.New()), flatInput("ADMIN1"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	input := flatInput("ADMIN1")
	input.SellerID = &f.seller.ID
	_, err = f.svc.Create(context.Background(), scope.Admin(uuid.New()), input)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), scope.Customer(uuid.New()), flatInput("NOPE1"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCreateValidatesDiscount(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())

	input := CreateCouponInput{Code: "BIG", DiscountType: "percent", DiscountValue: decimal.NewFromInt(120)}
	_, err := f.svc.Create(context.Background(), sc, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Contains(t, details, "discountValue")

	input = CreateCouponInput{Code: "BOGO", DiscountType: "bogo", DiscountValue: decimal.NewFromInt(1)}
	_, err = f.svc.Create(context.Background(), sc, input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateDuplicateCodeIsConflict(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())

	_, err := f.svc.Create(context.Background(), sc, flatInput("DUP10"))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), sc, flatInput(" DUP10 "))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var count int64
	require.NoError(t, f.conn.Model(&models.Coupon{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyDistinguishesFailedFromNotFound(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())
	_, err := f.svc.Create(context.Background(), sc, flatInput("WELCOME"))
	require.NoError(t, err)

	res, err := f.svc.Apply(context.Background(), ApplyCouponInput{Code: " WELCOME ", SellerUsername: "SpiceRoute"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res.Status)
	require.NotNil(t, res.Coupon)
	assert.Equal(t, "WELCOME", res.Coupon.Code)

	res, err = f.svc.Apply(context.Background(), ApplyCouponInput{Code: "MISSING", SellerUsername: "spiceroute"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Equal(t, "Invalid Coupon", res.Message)
	assert.Nil(t, res.Coupon)

	_, err = f.svc.Apply(context.Background(), ApplyCouponInput{Code: "WELCOME", SellerUsername: "ghost"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Seller not found", pkgerrors.As(err).Message())
}

func TestCouponCodesMatchExactly(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())
	_, err := f.svc.Create(context.Background(), sc, flatInput("Summer24"))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), sc, flatInput("SUMMER24"))
	require.NoError(t, err)

	res, err := f.svc.Apply(context.Background(), ApplyCouponInput{Code: "summer24", SellerUsername: "spiceroute"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, res.Status)

	res, err = f.svc.Apply(context.Background(), ApplyCouponInput{Code: "Summer24", SellerUsername: "spiceroute"})
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, res.Status)
	assert.Equal(t, "Summer24", res.Coupon.Code)
}

func TestApplyRejectsInactiveDeletedAndExpired(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	f.svc.(*service).now = func() time.Time { return fixed }

	expiredTo := fixed.Add(-time.Hour)
	expired := flatInput("EXPIRED")
	expired.ValidTo = &expiredTo
	_, err := f.svc.Create(context.Background(), sc, expired)
	require.NoError(t, err)

	inactive := false
	off := flatInput("PAUSED")
	off.IsActive = &inactive
	_, err = f.svc.Create(context.Background(), sc, off)
	require.NoError(t, err)

	gone, err := f.svc.Create(context.Background(), sc, flatInput("GONE"))
	require.NoError(t, err)
	deleted := true
	_, err = f.svc.Update(context.Background(), sc, gone.ID, UpdateCouponInput{IsDeleted: &deleted})
	require.NoError(t, err)

	for _, code := range []string{"EXPIRED", "PAUSED", "GONE"} {
		res, err := f.svc.Apply(context.Background(), ApplyCouponInput{Code: code, SellerUsername: "spiceroute"})
		require.NoError(t, err, code)
		assert.Equal(t, types.StatusFailed, res.Status, code)
	}
}

func TestListScopesAndFilters(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())

	_, err := f.svc.List(context.Background(), sc, ListFilters{}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	for _, code := range []string{"ONE", "TWO", "THREE"} {
		_, err := f.svc.Create(context.Background(), sc, flatInput(code))
		require.NoError(t, err)
	}
	otherSeller := models.Seller{ShopName: "Other", Username: "other", Email: "o@x.test", PasswordHash: "x"}
	require.NoError(t, f.conn.Create(&otherSeller).Error)
	_, err = f.svc.Create(context.Background(), scope.Seller(otherSeller.ID, uuid.New()), flatInput("ONE"))
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), sc, ListFilters{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.ItemCount)

	all, err := f.svc.List(context.Background(), scope.Admin(uuid.New()), ListFilters{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.ItemCount)

	deleted := true
	_, err = f.svc.List(context.Background(), sc, ListFilters{IsDeleted: &deleted}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.List(context.Background(), scope.Customer(uuid.New()), ListFilters{}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestUpdateGetDeleteAndCount(t *testing.T) {
	f := newFixture(t)
	sc := scope.Seller(f.seller.ID, uuid.New())
	dto, err := f.svc.Create(context.Background(), sc, flatInput("EDITME"))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), sc, dto.ID, UpdateCouponInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))

	value := decimal.NewFromInt(75)
	updated, err := f.svc.Update(context.Background(), sc, dto.ID, UpdateCouponInput{DiscountValue: &value})
	require.NoError(t, err)
	assert.True(t, updated.DiscountValue.Equal(value))

	got, err := f.svc.Get(context.Background(), sc, dto.ID)
	require.NoError(t, err)
	assert.True(t, got.DiscountValue.Equal(value))

	_, err = f.svc.Get(context.Background(), scope.Seller(uuid.New(), uuid.New()), dto.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	count, err := f.svc.Count(context.Background(), f.seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, f.svc.Delete(context.Background(), sc, dto.ID))
	_, err = f.svc.Get(context.Background(), sc, dto.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	count, err = f.svc.Count(context.Background(), f.seller.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
