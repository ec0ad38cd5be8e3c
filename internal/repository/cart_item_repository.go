package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 明細は必ず cart_id で絞る（他のカートの明細は ErrNotFound）
type CartItemRepository interface {
	// 商品も読み込む
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	CountByCartID(ctx context.Context, cartID string) (int64, error)
	FindByID(ctx context.Context, cartID string, itemID int64) (model.CartItem, error)
	// 同一商品はプラス
	AddOrIncrement(ctx context.Context, cartID string, productID int64, addQty int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartID string, itemID int64, qty int64) error
	Delete(ctx context.Context, cartID string, itemID int64) error
}
