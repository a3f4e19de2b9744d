package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// MemorySessionRepo はプロセス内メモリに保持するセッションリポジトリ。
// 開発環境とテストで使用する。プロセス再起動で内容は失われる。
type MemorySessionRepo struct {
	mu      sync.RWMutex
	records map[string]model.SessionRecord
	now     func() time.Time
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		records: make(map[string]model.SessionRecord),
		now:     time.Now,
	}
}

// Get は指定クライアントのセッションを取得する。期限切れの場合はnilを返す。
func (r *MemorySessionRepo) Get(_ context.Context, clientID string) (*model.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[clientID]
	if !ok || !rec.ExpiresAt.After(r.now()) {
		return nil, nil
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

// Put はセッションデータを書き込む。
func (r *MemorySessionRepo) Put(_ context.Context, clientID string, data []byte, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rec, ok := r.records[clientID]
	if !ok {
		rec = model.SessionRecord{ClientID: clientID, CreatedAt: now}
	}
	rec.Data = append([]byte(nil), data...)
	rec.ExpiresAt = now.Add(ttl)
	rec.UpdatedAt = now
	r.records[clientID] = rec
	return nil
}

// Delete は指定クライアントのセッションを削除する。
func (r *MemorySessionRepo) Delete(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, clientID)
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *MemorySessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for id, rec := range r.records {
		if !rec.ExpiresAt.After(now) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

// Len は保持しているセッション数を返す。テスト用。
func (r *MemorySessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

var _ SessionRepository = (*MemorySessionRepo)(nil)
