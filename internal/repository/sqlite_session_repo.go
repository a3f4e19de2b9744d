package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// SQLiteSessionRepo はSQLiteを使用したセッションリポジトリ。
// 単一ノード構成向け。スキーマは database.OpenSQLite が作成する。
type SQLiteSessionRepo struct {
	db *sql.DB
}

// NewSQLiteSessionRepo はSQLiteSessionRepoを生成する。
func NewSQLiteSessionRepo(db *sql.DB) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

// Get は指定クライアントのセッションを取得する。期限切れの場合はnilを返す。
func (r *SQLiteSessionRepo) Get(ctx context.Context, clientID string) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{}
	var expiresAt, createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT client_id, data, expires_at, created_at, updated_at
		 FROM client_sessions
		 WHERE client_id = ? AND expires_at > ?`,
		clientID, time.Now().Unix(),
	).Scan(&rec.ClientID, &rec.Data, &expiresAt, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	rec.ExpiresAt = time.Unix(expiresAt, 0)
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return rec, nil
}

// Put はセッションデータをUPSERTする。
func (r *SQLiteSessionRepo) Put(ctx context.Context, clientID string, data []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO client_sessions (client_id, data, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (client_id)
		 DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at, updated_at = excluded.updated_at`,
		clientID, data, now.Add(ttl).Unix(), now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete は指定クライアントのセッションを削除する。
func (r *SQLiteSessionRepo) Delete(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM client_sessions WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *SQLiteSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM client_sessions WHERE expires_at <= ?`,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}

var _ SessionRepository = (*SQLiteSessionRepo)(nil)
