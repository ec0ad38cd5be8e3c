package model

type Promotion struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string  `gorm:"type:varchar(255);not null" json:"description"`
	Discount    float64 `gorm:"not null" json:"discount"`
}
