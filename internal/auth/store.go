package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// State はセッションストアの状態を表す。
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Store は1クライアント分のセッション状態を保持する。
//
// 状態遷移: Uninitialized → Initializing → {Authenticated, Unauthenticated}。
// Initializing は Init で一度だけ訪れ、以後戻ることはない。
// Login/Register は直列化されず、後に完了した呼び出しの結果が残る。
type Store struct {
	dir     *Directory
	persist Persistence
	latency time.Duration

	mu           sync.RWMutex
	started      bool
	initializing bool
	identity     *model.Identity
	pending      int
	// generation はLogin/Register/Logoutのたびに増加する。
	// 初期化中に状態が変わった場合、読み込み結果で上書きしないために使う。
	generation uint64
	// onChange はLogin/Register/Logoutで確定したIDを所有者（Registry）へ通知する。
	onChange func(identity *model.Identity)

	ready chan struct{}
}

// initTimeout は初回読み込みの上限時間。
const initTimeout = 5 * time.Second

// NewStore はStoreを生成する。latencyはLogin/Registerの擬似遅延。
func NewStore(dir *Directory, persist Persistence, latency time.Duration) *Store {
	return &Store{
		dir:     dir,
		persist: persist,
		latency: latency,
		ready:   make(chan struct{}),
	}
}

// Init は永続ストレージからセッションを一度だけ読み込む。
// 2回目以降の呼び出しは何もせずnilを返す。読み込み中に他のゴルーチンから
// 状態を参照するとInitializingが返る。
//
// 読み込みは呼び出し元のキャンセルから切り離し、initTimeoutで打ち切る。
// ストレージ障害などで読めなかった場合はログアウト状態で確定したうえでエラーを返す。
// 壊れたデータはエラーにせず削除する。
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.initializing = true
	gen := s.generation
	s.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()

	var loadErr error
	identity, err := s.persist.Load(loadCtx)
	if err != nil {
		identity = nil
		if errors.Is(err, ErrCorruptSession) {
			// 解釈できないデータはログアウト状態として扱い削除する
			slog.Warn("discarding malformed persisted session", slog.String("error", err.Error()))
			if clearErr := s.persist.Clear(loadCtx); clearErr != nil {
				slog.Error("failed to clear malformed session", slog.String("error", clearErr.Error()))
			}
		} else {
			slog.Error("failed to load persisted session", slog.String("error", err.Error()))
			loadErr = err
		}
	}

	s.mu.Lock()
	if s.generation == gen {
		s.identity = identity
	}
	s.initializing = false
	s.mu.Unlock()
	close(s.ready)
	return loadErr
}

// Ready は初期化完了時にクローズされるチャネルを返す。
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Login はメールアドレスと共通パスワードで認証し、成功時にIDを保存する。
// 失敗時は model.ErrInvalidCredentials を返し、状態は変更しない。
func (s *Store) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	s.beginPending()
	defer s.endPending()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	identity, err := s.dir.Authenticate(email, password)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, identity); err != nil {
		return nil, err
	}
	return cloneIdentity(identity), nil
}

// Register は新しいIDをロールuserで登録し、そのままログイン状態にする。
// メールアドレスが既に存在する場合は model.ErrEmailAlreadyExists を返す。
// passwordは保持しない。登録後のログインは共通パスワードで行う。
func (s *Store) Register(ctx context.Context, email, password, displayName string) (*model.Identity, error) {
	s.beginPending()
	defer s.endPending()

	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	identity, err := s.dir.Register(email, displayName)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, identity); err != nil {
		return nil, err
	}
	return cloneIdentity(identity), nil
}

// Logout はIDと永続化されたセッションを削除する。擬似遅延はない。
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.generation++
	s.mu.Unlock()

	if err := s.persist.Clear(ctx); err != nil {
		return err
	}
	s.notify(nil)
	return nil
}

// adopt は同じクライアントの別Storeで確定したIDを反映する。
// 初期化中であれば読み込み結果より優先される。
func (s *Store) adopt(identity *model.Identity) {
	s.mu.Lock()
	s.identity = cloneIdentity(identity)
	s.generation++
	s.mu.Unlock()
}

func (s *Store) notify(identity *model.Identity) {
	if s.onChange != nil {
		s.onChange(cloneIdentity(identity))
	}
}

// Identity は現在のIDのコピーを返す。未認証の場合はnil。
func (s *Store) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIdentity(s.identity)
}

// Initializing は初期読み込み中かどうかを返す。
func (s *Store) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

// Pending はLogin/Registerが処理中かどうかを返す。
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// IsAdmin は現在のIDが管理者ロールかどうかを返す。
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.IsAdmin()
}

// State は現在の状態を返す。
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case !s.started:
		return StateUninitialized
	case s.initializing:
		return StateInitializing
	case s.identity != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// commit はIDを永続化してから現在のIDとして設定する。
func (s *Store) commit(ctx context.Context, identity *model.Identity) error {
	if err := s.persist.Save(ctx, identity); err != nil {
		return fmt.Errorf("failed to persist identity: %w", err)
	}

	s.mu.Lock()
	s.identity = cloneIdentity(identity)
	s.generation++
	s.mu.Unlock()

	s.notify(identity)
	return nil
}

func (s *Store) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) beginPending() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

func (s *Store) endPending() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}

func cloneIdentity(identity *model.Identity) *model.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
