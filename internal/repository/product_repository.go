package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page         int
	Limit        int
	CollectionID *int64
	Search       string // title / description
	Ordering     string // unit_price, -unit_price, last_update, -last_update
	LowInventory bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	// 在庫を0にする。更新件数を返す
	ClearInventory(ctx context.Context, ids []int64) (int64, error)
}
