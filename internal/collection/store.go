// Package collection はビュー間で共有される、バージョン付きのインメモリコレクションを提供する。
//
// 書き込みはReplaceAll（またはその上に構築されたUpdate）に集約され、
// 成功するたびにバージョンが1つ増加して購読者へ通知される。
// 読み取り側はSnapshotで得たコピーを使用する。
package collection

import (
	"log/slog"
	"sync"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// MutationRecorder はコレクション更新の記録先。メトリクス収集に使用する。
type MutationRecorder interface {
	RecordCollectionMutation(collection string, version uint64, size int)
}

// Store は型Tのレコードを保持する共有コレクション。
// idOfはレコードのIDを返す関数で、Find/Removeで使用する。
type Store[T any] struct {
	name     string
	idOf     func(T) int
	recorder MutationRecorder

	mu      sync.RWMutex
	items   []T
	version uint64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// New はseedを初期内容とするStoreを生成する。初期バージョンは0。
// recorderはnilでもよい。
func New[T any](name string, idOf func(T) int, seed []T, recorder MutationRecorder) *Store[T] {
	items := make([]T, len(seed))
	copy(items, seed)

	return &Store[T]{
		name:     name,
		idOf:     idOf,
		recorder: recorder,
		items:    items,
		subs:     make(map[int]chan struct{}),
	}
}

// Name はコレクション名を返す。
func (s *Store[T]) Name() string {
	return s.name
}

// ReplaceAll はコレクションの内容を置き換え、バージョンを増加させる。
//
// itemsがnilの場合は不正な入力とみなし、ログを出力して何もしない。
// 呼び出し元にはエラーを返さない。全件削除には空スライスを渡すこと。
func (s *Store[T]) ReplaceAll(items []T) {
	if items == nil {
		apiErr := model.NewMalformedCollectionInputError(s.name)
		slog.Warn("ignoring malformed collection input",
			slog.String("code", apiErr.Code),
			slog.String("collection", s.name),
		)
		return
	}

	s.mu.Lock()
	version, size := s.replaceLocked(items)
	s.mu.Unlock()

	s.afterMutation(version, size)
}

// Update は現在の内容のコピーをfnに渡し、fnの戻り値で置き換える。
// 読み取りから置換までを1つのロック区間で行う。
// fnがnilを返した場合は変更を行わない。fnの第2戻り値がfalseの場合も同様。
func (s *Store[T]) Update(fn func(current []T) ([]T, bool)) bool {
	s.mu.Lock()
	next, ok := fn(s.copyLocked())
	if !ok || next == nil {
		s.mu.Unlock()
		return false
	}
	version, size := s.replaceLocked(next)
	s.mu.Unlock()

	s.afterMutation(version, size)
	return true
}

// Snapshot は現在の内容のコピーを返す。
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// SnapshotWithVersion は内容のコピーと、その時点のバージョンを返す。
func (s *Store[T]) SnapshotWithVersion() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(), s.version
}

// Version は現在のバージョンを返す。
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len は現在の件数を返す。
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Find は指定IDのレコードを返す。
func (s *Store[T]) Find(id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if s.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Remove は指定IDのレコードを1件削除する。見つからない場合はfalseを返す。
func (s *Store[T]) Remove(id int) bool {
	return s.Update(func(current []T) ([]T, bool) {
		for i, item := range current {
			if s.idOf(item) == id {
				return append(current[:i], current[i+1:]...), true
			}
		}
		return nil, false
	})
}

// Subscribe は変更通知を受け取るチャネルと解除関数を返す。
// 通知はバッファ1で合流されるため、受信側は通知を受けたらSnapshotで最新状態を読み直すこと。
func (s *Store[T]) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

// replaceLocked は書き込みロック保持中に呼び出すこと。
// 既存のバッキング配列を再利用して内容を置き換える。
func (s *Store[T]) replaceLocked(items []T) (uint64, int) {
	clear(s.items)
	s.items = append(s.items[:0], items...)
	s.version++
	return s.version, len(s.items)
}

func (s *Store[T]) copyLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) afterMutation(version uint64, size int) {
	if s.recorder != nil {
		s.recorder.RecordCollectionMutation(s.name, version, size)
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
