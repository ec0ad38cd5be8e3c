package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫がこれ未満なら Low 扱い
const LowInventoryThreshold = 10

// 税率（price_with_tax 用）
var taxRate = decimal.RequireFromString("1.1")

type Product struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	Slug         string          `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description  string          `gorm:"type:text" json:"description"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"unit_price"`
	Inventory    int64           `gorm:"not null" json:"inventory"`
	CollectionID int64           `gorm:"not null;index" json:"collection_id"`
	Collection   *Collection     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Promotions   []Promotion     `gorm:"many2many:product_promotions" json:"-"`
	LastUpdate   time.Time       `gorm:"not null;autoUpdateTime" json:"last_update"`
}

// InventoryStatus は管理画面の一覧と同じ Low / OK を返す。
func (p Product) InventoryStatus() string {
	if p.Inventory < LowInventoryThreshold {
		return "Low"
	}
	return "OK"
}

// 税込価格（小数2桁）
func (p Product) PriceWithTax() decimal.Decimal {
	return p.UnitPrice.Mul(taxRate).Round(2)
}
