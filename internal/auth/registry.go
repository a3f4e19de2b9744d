package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/repository"
)

// RegistryConfig はレジストリの設定。
type RegistryConfig struct {
	// CacheSize は保持するStoreの最大数。
	CacheSize int
	// IdleTTL は最後のアクセスからStoreを破棄するまでの時間。0以下の場合は無期限。
	IdleTTL time.Duration
	// SessionTTL は永続化するセッションの有効期間。
	SessionTTL time.Duration
	// Latency はLogin/Registerの擬似遅延。
	Latency time.Duration
}

// Registry はクライアントIDごとのStoreを管理する。
// 破棄されたStoreは次のアクセス時に再生成され、永続ストレージから再初期化される。
type Registry struct {
	dir    *Directory
	repo   repository.SessionRepository
	config RegistryConfig

	mu     sync.Mutex
	stores *expirable.LRU[string, *Store]
}

// NewRegistry はRegistryを生成する。
func NewRegistry(dir *Directory, repo repository.SessionRepository, config RegistryConfig) *Registry {
	size := config.CacheSize
	if size <= 0 {
		size = 10000
	}
	return &Registry{
		dir:    dir,
		repo:   repo,
		config: config,
		stores: expirable.NewLRU[string, *Store](size, nil, config.IdleTTL),
	}
}

// Get はクライアントIDに対応するStoreを返す。
// 初回アクセス時はStoreを生成し、呼び出し元のゴルーチンで初期化する。
// 初期化中に到着した他のリクエストはInitializing状態のStoreを受け取る。
// アクセスのたびにIdleTTLを延長する。
//
// ストレージ障害で初期化できなかったStoreは保持せず、次のアクセスで読み込みをやり直す。
func (r *Registry) Get(ctx context.Context, clientID string) *Store {
	r.mu.Lock()
	store, ok := r.stores.Get(clientID)
	if !ok {
		store = r.newStore(clientID)
	}
	// expirableはAddでのみ有効期限を更新する
	r.stores.Add(clientID, store)
	r.mu.Unlock()

	if ok {
		return store
	}

	if err := store.Init(ctx); err != nil {
		r.mu.Lock()
		if cur, found := r.stores.Peek(clientID); found && cur == store {
			r.stores.Remove(clientID)
		}
		r.mu.Unlock()
		slog.Warn("session load failed, will retry on next request",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}
	return store
}

func (r *Registry) newStore(clientID string) *Store {
	persist := NewKeyedPersistence(r.repo, clientID, r.config.SessionTTL)
	store := NewStore(r.dir, persist, r.config.Latency)
	store.onChange = func(identity *model.Identity) {
		r.forward(clientID, store, identity)
	}
	return store
}

// forward は追い出し済みのStoreで確定したLogin/Logoutの結果を、
// 同じクライアントの現行Storeへ反映する。
// 擬似遅延の間にStoreが入れ替わってもログイン結果を失わない。
func (r *Registry) forward(clientID string, from *Store, identity *model.Identity) {
	cur, ok := r.stores.Peek(clientID)
	if !ok || cur == from {
		return
	}
	cur.adopt(identity)
}

// Directory は共有のIDディレクトリを返す。
func (r *Registry) Directory() *Directory {
	return r.dir
}

// Len は保持しているStoreの数を返す。
func (r *Registry) Len() int {
	return r.stores.Len()
}
