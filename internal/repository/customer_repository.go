package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 管理者の顧客一覧
type CustomerListQuery struct {
	Page   int
	Limit  int
	Search string // first_name 前方一致
}

// 一覧用（注文数つき）
type CustomerSummary struct {
	model.Customer
	OrdersCount int64 `json:"orders_count"`
}

type CustomerRepository interface {
	// user_idで1件。無ければ作る（条件付きINSERT → SELECT）
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Customer, error)
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
	FindByUserID(ctx context.Context, userID int64) (model.Customer, error)
	Update(ctx context.Context, c model.Customer) error
	List(ctx context.Context, q CustomerListQuery) ([]CustomerSummary, int64, error)
}
