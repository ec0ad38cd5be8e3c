package model

import "time"

// 商品レビュー。商品削除で一緒に消える
type Review struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	Product     *Product  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"type:date;not null;autoCreateTime" json:"date"`
}
