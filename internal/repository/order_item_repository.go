package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderItemRepository interface {
	// itemsのOrderID/IDは埋め直される
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	CountByProductID(ctx context.Context, productID int64) (int64, error)
}
