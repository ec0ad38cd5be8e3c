package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// レビューは商品の下にぶら下がる
type ReviewRepository interface {
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)
	FindByID(ctx context.Context, productID, reviewID int64) (model.Review, error)
	Create(ctx context.Context, r model.Review) (model.Review, error)
	Update(ctx context.Context, r model.Review) error
	Delete(ctx context.Context, productID, reviewID int64) error
}
