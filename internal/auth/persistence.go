package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/repository"
)

// ErrCorruptSession は永続化されたセッションが解釈できない場合のエラー。
var ErrCorruptSession = errors.New("persisted session is malformed")

// Persistence はセッションの永続化ポート。
// 保存されていない状態はログアウト状態として扱う。
type Persistence interface {
	// Load は保存済みのIDを読み込む。存在しない場合は (nil, nil) を返す。
	Load(ctx context.Context) (*model.Identity, error)
	// Save はIDをシリアライズして保存する。
	Save(ctx context.Context, identity *model.Identity) error
	// Clear は保存済みのIDを削除する。
	Clear(ctx context.Context) error
}

// keyedPersistence はSessionRepositoryの1キーにID全体をJSONで保存する。
type keyedPersistence struct {
	repo     repository.SessionRepository
	clientID string
	ttl      time.Duration
}

// NewKeyedPersistence はクライアントIDをキーとするPersistenceを生成する。
func NewKeyedPersistence(repo repository.SessionRepository, clientID string, ttl time.Duration) Persistence {
	return &keyedPersistence{
		repo:     repo,
		clientID: clientID,
		ttl:      ttl,
	}
}

func (p *keyedPersistence) Load(ctx context.Context) (*model.Identity, error) {
	rec, err := p.repo.Get(ctx, p.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	var identity model.Identity
	if err := json.Unmarshal(rec.Data, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if identity.ID == "" || identity.Email == "" || !identity.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete identity", ErrCorruptSession)
	}
	return &identity, nil
}

func (p *keyedPersistence) Save(ctx context.Context, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := p.repo.Put(ctx, p.clientID, data, p.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (p *keyedPersistence) Clear(ctx context.Context) error {
	if err := p.repo.Delete(ctx, p.clientID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
