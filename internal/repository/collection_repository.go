package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CollectionWithCount struct {
	model.Collection
	ProductsCount int64 `json:"products_count"`
}

type CollectionRepository interface {
	// title順
	List(ctx context.Context) ([]CollectionWithCount, error)
	FindByID(ctx context.Context, id int64) (CollectionWithCount, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c model.Collection) (model.Collection, error)
	Update(ctx context.Context, c model.Collection) error
	// 商品が残っていれば ErrInUse
	Delete(ctx context.Context, id int64) error
}
