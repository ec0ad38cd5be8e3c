package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// CollectionUsecase
// =====================

func TestCollectionUsecase_List(t *testing.T) {
	collections := new(CollectionRepoMock)
	uc := usecase.NewCollectionUsecase(collections, new(ProductRepoMock))

	collections.On("List", mock.Anything).Return([]repo.CollectionWithCount{
		{Collection: model.Collection{ID: 1, Title: "Bakery"}, ProductsCount: 3},
	}, nil)

	outs, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, int64(3), outs[0].ProductsCount)
}

func TestCollectionUsecase_Create_Validation(t *testing.T) {
	collections := new(CollectionRepoMock)
	products := new(ProductRepoMock)
	uc := usecase.NewCollectionUsecase(collections, products)

	_, err := uc.Create(context.Background(), usecase.CollectionInput{Title: "  "})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "title")

	products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)
	_, err = uc.Create(context.Background(), usecase.CollectionInput{Title: "Bakery", FeaturedProduct: i64Ptr(9)})
	he = assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "featured_product")

	collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCollectionUsecase_Delete_InUse(t *testing.T) {
	collections := new(CollectionRepoMock)
	uc := usecase.NewCollectionUsecase(collections, new(ProductRepoMock))

	collections.On("Delete", mock.Anything, int64(1)).Return(repo.ErrInUse)
	collections.On("Delete", mock.Anything, int64(2)).Return(repo.ErrNotFound)
	collections.On("Delete", mock.Anything, int64(3)).Return(nil)

	assertStatus(t, uc.Delete(context.Background(), 1), http.StatusConflict)
	assertStatus(t, uc.Delete(context.Background(), 2), http.StatusNotFound)
	assert.NoError(t, uc.Delete(context.Background(), 3))
}

// =====================
// ReviewUsecase
// =====================

func TestReviewUsecase_Create(t *testing.T) {
	reviews := new(ReviewRepoMock)
	products := new(ProductRepoMock)
	uc := usecase.NewReviewUsecase(reviews, products, fixedClock{t: testNow})

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1}, nil)
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r model.Review) bool {
		return r.ProductID == 1 && r.Name == "Ann" && r.Description == "good" && r.Date.Equal(testNow)
	})).Return(model.Review{ID: 3, ProductID: 1, Name: "Ann", Description: "good", Date: testNow}, nil)

	out, err := uc.Create(context.Background(), 1, usecase.ReviewInput{Name: "Ann", Description: " good "})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", out.Date)
	reviews.AssertExpectations(t)
}

func TestReviewUsecase_Create_UnknownProduct(t *testing.T) {
	reviews := new(ReviewRepoMock)
	products := new(ProductRepoMock)
	uc := usecase.NewReviewUsecase(reviews, products, fixedClock{t: testNow})

	products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Create(context.Background(), 9, usecase.ReviewInput{Name: "Ann", Description: "good"})
	assertStatus(t, err, http.StatusNotFound)
}

func TestReviewUsecase_Create_Validation(t *testing.T) {
	products := new(ProductRepoMock)
	uc := usecase.NewReviewUsecase(new(ReviewRepoMock), products, fixedClock{t: testNow})
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1}, nil)

	_, err := uc.Create(context.Background(), 1, usecase.ReviewInput{Description: "good"})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "name")

	_, err = uc.Create(context.Background(), 1, usecase.ReviewInput{Name: "Ann"})
	he = assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "description")
}

func TestReviewUsecase_Delete_WrongProduct(t *testing.T) {
	reviews := new(ReviewRepoMock)
	uc := usecase.NewReviewUsecase(reviews, new(ProductRepoMock), fixedClock{t: testNow})
	reviews.On("Delete", mock.Anything, int64(2), int64(3)).Return(repo.ErrNotFound)

	assertStatus(t, uc.Delete(context.Background(), 2, 3), http.StatusNotFound)
}

// =====================
// AddressUsecase
// =====================

func TestAddressUsecase_CreateAndList(t *testing.T) {
	addresses := new(AddressRepoMock)
	customers := new(CustomerRepoMock)
	uc := usecase.NewAddressUsecase(addresses, customers)

	customers.On("GetOrCreateByUserID", mock.Anything, int64(42)).Return(model.Customer{ID: 7, UserID: 42}, nil)
	addresses.On("Create", mock.Anything, model.Address{CustomerID: 7, Street: "1 Main St", City: "Springfield"}).
		Return(model.Address{ID: 1, CustomerID: 7, Street: "1 Main St", City: "Springfield"}, nil)
	addresses.On("ListByCustomerID", mock.Anything, int64(7)).
		Return([]model.Address{{ID: 1, CustomerID: 7, Street: "1 Main St", City: "Springfield"}}, nil)

	created, err := uc.Create(context.Background(), customerActor, usecase.AddressCreateRequest{
		Street: " 1 Main St ", City: "Springfield", Zip: strPtr(" "),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.Customer)
	assert.Nil(t, created.Zip)

	list, err := uc.List(context.Background(), customerActor)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddressUsecase_Guards(t *testing.T) {
	addresses := new(AddressRepoMock)
	customers := new(CustomerRepoMock)
	uc := usecase.NewAddressUsecase(addresses, customers)

	_, err := uc.List(context.Background(), model.Actor{})
	assertStatus(t, err, http.StatusUnauthorized)

	customers.On("GetOrCreateByUserID", mock.Anything, int64(42)).Return(model.Customer{ID: 7}, nil)
	_, err = uc.Create(context.Background(), customerActor, usecase.AddressCreateRequest{City: "x"})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "street")

	// 他人の住所
	addresses.On("Delete", mock.Anything, int64(7), int64(55)).Return(repo.ErrNotFound)
	assertStatus(t, uc.Delete(context.Background(), customerActor, 55), http.StatusNotFound)
}

// =====================
// CustomerUsecase
// =====================

func newCustomerFixture() (*usecase.CustomerUsecase, *TxManagerMock, *CustomerRepoMock, *OrderRepoMock, *AuditRepoMock) {
	tx := new(TxManagerMock)
	customers := new(CustomerRepoMock)
	orders := new(OrderRepoMock)
	audit := new(AuditRepoMock)
	tx.Repos = &TxReposMock{customers: customers, orders: orders, auditLogs: audit}
	return usecase.NewCustomerUsecase(tx, customers, orders, fixedClock{t: testNow}), tx, customers, orders, audit
}

func TestCustomerUsecase_Me_CreatesLazily(t *testing.T) {
	uc, _, customers, _, _ := newCustomerFixture()
	customers.On("GetOrCreateByUserID", mock.Anything, int64(42)).
		Return(model.Customer{ID: 7, UserID: 42, Membership: model.MembershipBronze}, nil)

	out, err := uc.Me(context.Background(), customerActor)
	require.NoError(t, err)
	assert.Equal(t, "B", out.Membership)
	assert.Nil(t, out.BirthDate)
}

func TestCustomerUsecase_UpdateMe(t *testing.T) {
	uc, _, customers, _, _ := newCustomerFixture()
	customers.On("GetOrCreateByUserID", mock.Anything, int64(42)).Return(model.Customer{ID: 7, UserID: 42, Membership: model.MembershipBronze}, nil)
	customers.On("Update", mock.Anything, mock.MatchedBy(func(c model.Customer) bool {
		return c.ID == 7 && c.Phone == "555-0100" && c.BirthDate != nil &&
			c.BirthDate.Equal(time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)) &&
			c.Email != nil && *c.Email == "ann@example.com"
	})).Return(nil)

	out, err := uc.UpdateMe(context.Background(), customerActor, usecase.CustomerInput{
		Phone:     strPtr("555-0100"),
		BirthDate: strPtr("1990-01-02"),
		Email:     strPtr("ann@example.com"),
	})
	require.NoError(t, err)
	require.NotNil(t, out.BirthDate)
	assert.Equal(t, "1990-01-02", *out.BirthDate)
	customers.AssertExpectations(t)
}

func TestCustomerUsecase_UpdateMe_Validation(t *testing.T) {
	cases := map[string]struct {
		in    usecase.CustomerInput
		field string
	}{
		"membership by customer": {in: usecase.CustomerInput{Membership: strPtr("G")}, field: "membership"},
		"bad email":              {in: usecase.CustomerInput{Email: strPtr("not-an-email")}, field: "email"},
		"bad birth date":         {in: usecase.CustomerInput{BirthDate: strPtr("02/01/1990")}, field: "birth_date"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			uc, _, customers, _, _ := newCustomerFixture()
			customers.On("GetOrCreateByUserID", mock.Anything, int64(42)).Return(model.Customer{ID: 7}, nil)

			_, err := uc.UpdateMe(context.Background(), customerActor, tc.in)
			he := assertStatus(t, err, http.StatusBadRequest)
			assert.Contains(t, he.Fields, tc.field)
			customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestCustomerUsecase_Update_AuditsMembershipChange(t *testing.T) {
	uc, tx, customers, _, audit := newCustomerFixture()
	tx.On("WithinTx", mock.Anything).Return(nil)
	customers.On("FindByID", mock.Anything, int64(7)).Return(model.Customer{ID: 7, UserID: 42, Membership: model.MembershipBronze}, nil)
	customers.On("Update", mock.Anything, mock.MatchedBy(func(c model.Customer) bool {
		return c.Membership == model.MembershipGold
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.Action == model.AuditActionUpdateCustomer &&
			a.ResourceType == model.AuditResourceCustomer &&
			a.ResourceID == 7 &&
			strings.Contains(a.BeforeJSON, `"membership":"B"`) &&
			strings.Contains(a.AfterJSON, `"membership":"G"`) &&
			a.CreatedAt.Equal(testNow)
	})).Return(nil)

	out, err := uc.Update(context.Background(), staffActor, 7, usecase.CustomerInput{Membership: strPtr("G")})
	require.NoError(t, err)
	assert.Equal(t, "G", out.Membership)
	audit.AssertExpectations(t)
}

func TestCustomerUsecase_Update_NonStaff(t *testing.T) {
	uc, tx, _, _, _ := newCustomerFixture()

	_, err := uc.Update(context.Background(), customerActor, 7, usecase.CustomerInput{})
	assertStatus(t, err, http.StatusForbidden)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCustomerUsecase_List_WithOrdersCount(t *testing.T) {
	uc, _, customers, _, _ := newCustomerFixture()
	customers.On("List", mock.Anything, repo.CustomerListQuery{Page: 1, Limit: 50, Search: "an"}).
		Return([]repo.CustomerSummary{{Customer: model.Customer{ID: 7, FirstName: "Ann"}, OrdersCount: 2}}, int64(1), nil)

	out, err := uc.List(context.Background(), usecase.CustomerListInput{Search: "an"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.NotNil(t, out.Results[0].OrdersCount)
	assert.Equal(t, int64(2), *out.Results[0].OrdersCount)
}

func TestCustomerUsecase_History(t *testing.T) {
	uc, _, customers, orders, _ := newCustomerFixture()
	customers.On("FindByID", mock.Anything, int64(7)).Return(model.Customer{ID: 7}, nil)
	orders.On("List", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == 7
	})).Return([]model.Order{{ID: 1, CustomerID: 7}, {ID: 2, CustomerID: 7}}, int64(2), nil)

	outs, err := uc.History(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, outs, 2)

	customers.On("FindByID", mock.Anything, int64(8)).Return(model.Customer{}, repo.ErrNotFound)
	_, err = uc.History(context.Background(), 8)
	assertStatus(t, err, http.StatusNotFound)
}
