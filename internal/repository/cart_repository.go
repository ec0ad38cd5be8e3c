package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	Create(ctx context.Context) (model.Cart, error)
	// 明細と商品も読み込む
	FindByID(ctx context.Context, cartID string) (model.Cart, error)
	Exists(ctx context.Context, cartID string) (bool, error)
	// 行ロック（SELECT ... FOR UPDATE）。Tx内で使う
	LockByID(ctx context.Context, cartID string) (model.Cart, error)
	// 明細ごと削除。無ければ ErrNotFound
	Delete(ctx context.Context, cartID string) error
}
