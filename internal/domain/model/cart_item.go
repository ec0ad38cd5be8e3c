package model

// カートの明細
// (cart_id, product_id) は一意。同じ商品の追加は数量加算になる
type CartItem struct {
	ID        int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID int64    `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int64    `gorm:"not null" json:"quantity"`
}
