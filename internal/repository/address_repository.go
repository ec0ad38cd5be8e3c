package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//顧客が持つ住所一覧を返す
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.Address, error)

	//Create は住所を新規作成する。
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//住所の削除。他人の住所は ErrNotFound
	Delete(ctx context.Context, customerID, addressID int64) error
}
