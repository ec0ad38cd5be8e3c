package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderListFilter struct {
	Page          int
	Limit         int
	CustomerID    *int64
	PaymentStatus string
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	// 明細と商品も読み込む
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error
}
