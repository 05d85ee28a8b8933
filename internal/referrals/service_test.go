package referrals

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type fixture struct {
	conn   *gorm.DB
	svc    Service
	user   models.User
	seller models.Seller
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	user := models.User{Name: "Asha", Email: "asha@example.test", IsActive: true}
	require.NoError(t, conn.Create(&user).Error)
	seller := models.Seller{ShopName: "Loom House", Username: "loomhouse", Email: "loom@x.test", PasswordHash: "x", IsOnboarded: true}
	require.NoError(t, conn.Create(&seller).Error)

	svc, err := NewService(NewRepository(conn), users.NewRepository(conn), sellers.NewRepository(conn))
	require.NoError(t, err)
	return fixture{conn: conn, svc: svc, user: user, seller: seller}
}

func TestCreatePopulatesRelations(t *testing.T) {
	f := newFixture(t)
	amount := decimal.NewFromInt(250)

	res, err := f.svc.Create(context.Background(), scope.Admin(uuid.New()), CreateReferralInput{
		ReferringUserID:  f.user.ID,
		ReferredSellerID: f.seller.ID,
		Amount:           &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res.Status)
	require.NotNil(t, res.Referral)
	assert.True(t, res.Referral.Amount.Equal(amount))
	assert.True(t, res.Referral.Onboarded)
	require.NotNil(t, res.Referral.ReferringUser)
	assert.Equal(t, "Asha", res.Referral.ReferringUser.Name)
	require.NotNil(t, res.Referral.ReferredSeller)
	assert.Equal(t, "loomhouse", res.Referral.ReferredSeller.Username)
}

func TestCreateDuplicateReturnsExistWithOneRow(t *testing.T) {
	f := newFixture(t)
	input := CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: f.seller.ID}

	first, err := f.svc.Create(context.Background(), scope.Admin(uuid.New()), input)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, first.Status)

	second, err := f.svc.Create(context.Background(), scope.Customer(f.user.ID), CreateReferralInput{ReferredSellerID: f.seller.ID})
	require.NoError(t, err)
	assert.Equal(t, types.StatusExist, second.Status)
	assert.Nil(t, second.Referral)

	var count int64
	require.NoError(t, f.conn.Model(&models.Referral{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConcurrentCreatesYieldOneRow(t *testing.T) {
	f := newFixture(t)
	input := CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: f.seller.ID}

	var wg sync.WaitGroup
	statuses := make([]string, 4)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Create(context.Background(), scope.Admin(uuid.New()), input)
			if err == nil {
				statuses[i] = res.Status
			}
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{types.StatusSuccess, types.StatusExist, types.StatusExist, types.StatusExist}, statuses)
}

func TestCreateMissingEntitiesIsNotFound(t *testing.T) {
	f := newFixture(t)
	admin := scope.Admin(uuid.New())

	_, err := f.svc.Create(context.Background(), admin, CreateReferralInput{ReferringUserID: uuid.New(), ReferredSellerID: f.seller.ID})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(context.Background(), admin, CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: uuid.New()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(context.Background(), scope.Seller(f.seller.ID, uuid.New()), CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: f.seller.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

type failingUsers struct{}

func (failingUsers) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, errors.New("connection reset")
}

func TestCreateLookupFailureIsDependency(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), failingUsers{}, sellers.NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), scope.Admin(uuid.New()), CreateReferralInput{ReferringUserID: uuid.New(), ReferredSellerID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestListForUserAndScopes(t *testing.T) {
	f := newFixture(t)
	admin := scope.Admin(uuid.New())

	_, err := f.svc.ListForUser(context.Background(), f.user.ID, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	other := models.Seller{ShopName: "Tide", Username: "tide", Email: "t@x.test", PasswordHash: "x"}
	require.NoError(t, f.conn.Create(&other).Error)
	for _, sellerID := range []uuid.UUID{f.seller.ID, other.ID} {
		_, err := f.svc.Create(context.Background(), admin, CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: sellerID})
		require.NoError(t, err)
	}

	page, err := f.svc.ListForUser(context.Background(), f.user.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.ItemCount)
	for _, row := range page.Data {
		require.NotNil(t, row.ReferringUser)
		require.NotNil(t, row.ReferredSeller)
	}

	sellerPage, err := f.svc.List(context.Background(), scope.Seller(other.ID, uuid.New()), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, sellerPage.Data, 1)
	assert.Equal(t, "tide", sellerPage.Data[0].ReferredSeller.Username)

	onboarded := true
	filtered, err := f.svc.List(context.Background(), admin, ListFilters{Onboarded: &onboarded}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, filtered.Data, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	admin := scope.Admin(uuid.New())
	res, err := f.svc.Create(context.Background(), admin, CreateReferralInput{ReferringUserID: f.user.ID, ReferredSellerID: f.seller.ID})
	require.NoError(t, err)
	id := res.Referral.ID

	_, err = f.svc.Update(context.Background(), admin, id, UpdateReferralInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))

	paid := true
	amount := decimal.RequireFromString("99.50")
	_, err = f.svc.Update(context.Background(), scope.Customer(f.user.ID), id, UpdateReferralInput{Status: &paid})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := f.svc.Update(context.Background(), admin, id, UpdateReferralInput{Status: &paid, Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Status)
	assert.True(t, updated.Amount.Equal(amount))
	require.NotNil(t, updated.ReferredSeller)

	_, err = f.svc.Get(context.Background(), scope.Customer(uuid.New()), id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Get(context.Background(), scope.Customer(f.user.ID), id)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), admin, id))
	err = f.svc.Delete(context.Background(), admin, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
