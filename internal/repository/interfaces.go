// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// SessionRepository はクライアントごとのセッションデータの永続化インターフェース。
// クライアントIDをキーとし、シリアライズ済みのIdentityを値として1件だけ保持する。
type SessionRepository interface {
	// Get は指定クライアントのセッションを取得する。存在しない、または期限切れの場合はnilを返す。
	Get(ctx context.Context, clientID string) (*model.SessionRecord, error)
	// Put はセッションデータを書き込む。既存データは上書きする。
	Put(ctx context.Context, clientID string, data []byte, ttl time.Duration) error
	// Delete は指定クライアントのセッションを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, clientID string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// HealthChecker はDB接続の死活確認インターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
