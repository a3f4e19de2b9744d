package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/wanderluxe/internal/auth"
	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/repository"
)

// --- テスト用ヘルパー ---

func newTestDirectory(t *testing.T) *auth.Directory {
	t.Helper()
	dir, err := auth.NewDirectory(auth.DefaultSeed(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewDirectory returned error: %v", err)
	}
	return dir
}

// newTestStore は初期化済みのセッションストアを返す。
// emailが空でない場合はそのアカウントでログインした状態にする。
func newTestStore(t *testing.T, email string) *auth.Store {
	t.Helper()
	ctx := context.Background()
	persist := auth.NewKeyedPersistence(repository.NewMemorySessionRepo(), "client-test", time.Hour)
	store := auth.NewStore(newTestDirectory(t), persist, 0)
	store.Init(ctx)

	if email != "" {
		if _, err := store.Login(ctx, email, auth.SentinelPassword); err != nil {
			t.Fatalf("Login(%q) returned error: %v", email, err)
		}
	}
	return store
}

// blockingPersistence はLoadがreleaseされるまで戻らない永続化ポート。
type blockingPersistence struct {
	loading chan struct{}
	release chan struct{}
}

func (p *blockingPersistence) Load(_ context.Context) (*model.Identity, error) {
	close(p.loading)
	<-p.release
	return nil, nil
}

func (p *blockingPersistence) Save(context.Context, *model.Identity) error { return nil }
func (p *blockingPersistence) Clear(context.Context) error                 { return nil }

var _ auth.Persistence = (*blockingPersistence)(nil)

// newInitializingStore は初期化中のまま止まっているストアを返す。
// 返り値の関数を呼ぶと初期化が完了する。
func newInitializingStore(t *testing.T) (*auth.Store, func()) {
	t.Helper()
	p := &blockingPersistence{loading: make(chan struct{}), release: make(chan struct{})}
	store := auth.NewStore(newTestDirectory(t), p, 0)
	go store.Init(context.Background())
	<-p.loading

	var released bool
	release := func() {
		if !released {
			released = true
			close(p.release)
			<-store.Ready()
		}
	}
	t.Cleanup(release)
	return store, release
}

func withClient(r *http.Request, clientID string, store *auth.Store) *http.Request {
	return r.WithContext(ContextWithClient(r.Context(), clientID, store))
}

type mockRegistry struct {
	getFn func(ctx context.Context, clientID string) *auth.Store
	calls []string
}

func (m *mockRegistry) Get(ctx context.Context, clientID string) *auth.Store {
	m.calls = append(m.calls, clientID)
	if m.getFn != nil {
		return m.getFn(ctx, clientID)
	}
	return nil
}

var _ ClientRegistry = (*mockRegistry)(nil)
var _ ClientRegistry = (*auth.Registry)(nil)
