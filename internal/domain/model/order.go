package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "P"
	PaymentStatusCompleted PaymentStatus = "C"
	PaymentStatusFailed    PaymentStatus = "F"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// 作成後に変わるのは payment_status だけ
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID    int64         `gorm:"not null;index" json:"customer_id"`
	Customer      *Customer     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	PlacedAt      time.Time     `gorm:"not null;index" json:"placed_at"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(1);not null;default:'P';index" json:"payment_status"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
}
