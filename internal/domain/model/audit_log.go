package model

import "time"

// 支払いステータス更新、在庫クリアなど。
type AuditAction string

const (
	//支払いステータスを更新した操作。
	AuditActionUpdatePaymentStatus AuditAction = "UPDATE_PAYMENT_STATUS"
	//在庫を0にした操作（一括）。
	AuditActionClearInventory AuditAction = "CLEAR_INVENTORY"
	//顧客情報を管理者が更新した操作。
	AuditActionUpdateCustomer AuditAction = "UPDATE_CUSTOMER"
)

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作。
	AuditResourceOrder AuditResourceType = "order"

	//商品に対する操作。
	AuditResourceProduct AuditResourceType = "product"

	//顧客に対する操作。
	AuditResourceCustomer AuditResourceType = "customer"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のユーザーID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// AutoMigrate 対象（作成順）
func All() []interface{} {
	return []interface{}{
		&Promotion{},
		&Collection{},
		&Product{},
		&Review{},
		&Customer{},
		&Address{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&AuditLog{},
	}
}
