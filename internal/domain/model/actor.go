package model

// 認証レイヤーから渡される呼び出し元。
// UserID は認証アカウントのID（Customer.UserID と対応）
type Actor struct {
	UserID  int64
	IsStaff bool
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}
