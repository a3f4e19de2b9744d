// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin は管理者。
	RoleAdmin Role = "admin"
)

// Valid は既知のロールかどうかを返す。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity は認証済みユーザーの識別情報を表す。
// クライアントごとの永続ストレージにはこの構造体をJSONとしてそのまま保存する。
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// IsAdmin は管理者ロールかどうかを返す。
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// SessionRecord はクライアントIDをキーとして永続化されるセッションデータを表す。
// Dataにはシリアライズ済みのIdentityが入る。
type SessionRecord struct {
	ClientID  string
	Data      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
