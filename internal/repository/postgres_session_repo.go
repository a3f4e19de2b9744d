package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Get は指定クライアントのセッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) Get(ctx context.Context, clientID string) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT client_id, data, expires_at, created_at, updated_at
		 FROM client_sessions
		 WHERE client_id = $1 AND expires_at > now()`,
		clientID,
	).Scan(&rec.ClientID, &rec.Data, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return rec, nil
}

// Put はセッションデータをUPSERTする。
func (r *PostgresSessionRepo) Put(ctx context.Context, clientID string, data []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO client_sessions (client_id, data, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (client_id)
		 DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		clientID, data, now.Add(ttl), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete は指定クライアントのセッションを削除する。
func (r *PostgresSessionRepo) Delete(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_sessions WHERE client_id = $1`,
		clientID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM client_sessions WHERE expires_at <= now()`,
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

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
