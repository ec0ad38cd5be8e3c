package model

import "time"

type Membership string

const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

func (m Membership) Valid() bool {
	switch m {
	case MembershipBronze, MembershipSilver, MembershipGold:
		return true
	}
	return false
}

// 認証アカウント(UserID)と1:1の顧客プロフィール。
// 初回注文時などに遅延作成される。
type Customer struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	FirstName  string     `gorm:"type:varchar(255);not null;default:''" json:"first_name"`
	LastName   string     `gorm:"type:varchar(255);not null;default:''" json:"last_name"`
	Email      *string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone      string     `gorm:"type:varchar(255);not null;default:''" json:"phone"`
	BirthDate  *time.Time `gorm:"type:date" json:"birth_date"`
	Membership Membership `gorm:"type:varchar(1);not null;default:'B'" json:"membership"`
}
