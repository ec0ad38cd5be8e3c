package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUsecase() (*usecase.CartUsecase, *CartRepoMock, *CartItemRepoMock, *ProductRepoMock) {
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	return usecase.NewCartUsecase(carts, items, products), carts, items, products
}

func TestCartUsecase_CreateCart(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()
	carts.On("Create", mock.Anything).Return(model.Cart{ID: cartC1, CreatedAt: testNow}, nil)

	out, err := uc.CreateCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cartC1, out.ID)
	assert.Empty(t, out.Items)
	assert.Equal(t, "0.00", out.TotalPrice)
}

func TestCartUsecase_GetCart_Totals(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()
	carts.On("FindByID", mock.Anything, cartC1).Return(model.Cart{ID: cartC1, Items: cartC1Items()}, nil)

	out, err := uc.GetCart(context.Background(), cartC1)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "20.00", out.Items[0].TotalPrice)
	assert.Equal(t, "25.00", out.TotalPrice)
}

func TestCartUsecase_GetCart_NotFound(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()
	carts.On("FindByID", mock.Anything, cartC1).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.GetCart(context.Background(), cartC1)
	assertStatus(t, err, http.StatusNotFound)

	// UUIDでなければDBに行かない
	_, err = uc.GetCart(context.Background(), "1")
	assertStatus(t, err, http.StatusNotFound)
	carts.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestCartUsecase_AddItem_Validation(t *testing.T) {
	uc, carts, items, products := newCartUsecase()
	carts.On("Exists", mock.Anything, cartC1).Return(true, nil)
	products.On("FindByID", mock.Anything, int64(404)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddItem(context.Background(), cartC1, usecase.AddCartItemInput{ProductID: 1, Quantity: 0})
	he := assertStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Fields, "quantity")

	_, err = uc.AddItem(context.Background(), cartC1, usecase.AddCartItemInput{ProductID: 404, Quantity: 1})
	he = assertStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "no product with the given ID was found", he.Fields["product_id"])

	items.AssertNotCalled(t, "AddOrIncrement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_UnknownCart(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()
	carts.On("Exists", mock.Anything, cartC1).Return(false, nil)

	_, err := uc.AddItem(context.Background(), cartC1, usecase.AddCartItemInput{ProductID: 1, Quantity: 1})
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_AddItem_Increments(t *testing.T) {
	uc, carts, items, products := newCartUsecase()
	p := model.Product{ID: 1, Title: "A", UnitPrice: decimal.RequireFromString("10.00")}

	carts.On("Exists", mock.Anything, cartC1).Return(true, nil)
	products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)
	items.On("AddOrIncrement", mock.Anything, cartC1, int64(1), int64(2)).
		Return(model.CartItem{ID: 11, CartID: cartC1, ProductID: 1, Product: &p, Quantity: 3}, nil)

	out, err := uc.AddItem(context.Background(), cartC1, usecase.AddCartItemInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Quantity)
	assert.Equal(t, "30.00", out.TotalPrice)
	items.AssertExpectations(t)
}

func TestCartUsecase_UpdateItem(t *testing.T) {
	uc, _, items, _ := newCartUsecase()
	p := model.Product{ID: 1, UnitPrice: decimal.RequireFromString("2.50")}

	_, err := uc.UpdateItem(context.Background(), cartC1, 11, usecase.UpdateCartItemInput{Quantity: 0})
	assertStatus(t, err, http.StatusBadRequest)

	items.On("UpdateQuantity", mock.Anything, cartC1, int64(12), int64(4)).Return(repo.ErrNotFound)
	_, err = uc.UpdateItem(context.Background(), cartC1, 12, usecase.UpdateCartItemInput{Quantity: 4})
	assertStatus(t, err, http.StatusNotFound)

	items.On("UpdateQuantity", mock.Anything, cartC1, int64(11), int64(4)).Return(nil)
	items.On("FindByID", mock.Anything, cartC1, int64(11)).
		Return(model.CartItem{ID: 11, ProductID: 1, Product: &p, Quantity: 4}, nil)
	out, err := uc.UpdateItem(context.Background(), cartC1, 11, usecase.UpdateCartItemInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "10.00", out.TotalPrice)
}

func TestCartUsecase_DeleteItem_OtherCart(t *testing.T) {
	uc, _, items, _ := newCartUsecase()
	items.On("Delete", mock.Anything, cartC1, int64(99)).Return(repo.ErrNotFound)

	err := uc.DeleteItem(context.Background(), cartC1, 99)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_DeleteCart(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()
	carts.On("Delete", mock.Anything, cartC1).Return(nil)

	assert.NoError(t, uc.DeleteCart(context.Background(), cartC1))
	carts.AssertExpectations(t)
}
