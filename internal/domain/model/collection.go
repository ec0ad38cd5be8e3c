package model

// 商品のまとまり。featured_product は参照だけ持つ（循環FKを避ける）
type Collection struct {
	ID                int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title             string `gorm:"type:varchar(255);not null;index" json:"title"`
	FeaturedProductID *int64 `gorm:"index" json:"featured_product_id"`
}
