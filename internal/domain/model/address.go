package model

// 配送先住所（顧客削除で一緒に消える）
type Address struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64     `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	//番地など
	Street string `gorm:"type:varchar(255);not null" json:"street"`

	//市区町村
	City string `gorm:"type:varchar(255);not null" json:"city"`

	//郵便番号（任意）
	Zip *string `gorm:"type:varchar(255)" json:"zip"`
}
