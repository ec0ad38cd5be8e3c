package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 匿名カート。IDは連番ではなくUUID（知っている人だけが触れる）
// 注文確定か明示削除で消える
type Cart struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
