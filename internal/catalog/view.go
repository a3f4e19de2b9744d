package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
)

// 派生ビューの再計算契機
const (
	TriggerNotify = "notify"
	TriggerTick   = "tick"
	TriggerInit   = "init"
)

// ViewRecorder は派生ビューの再計算の記録先。
type ViewRecorder interface {
	RecordViewRefresh(view, trigger string)
}

// PublishedView は公開中ツアーだけを保持する派生ビュー。
//
// コレクションの変更通知を受けるたびに再計算し、通知を取りこぼした場合でも
// 定期的な再計算によって一定時間内に書き込み側の状態へ収束する。
type PublishedView struct {
	store    *collection.Store[model.Tour]
	interval time.Duration
	recorder ViewRecorder

	mu      sync.RWMutex
	tours   []model.Tour
	version uint64
}

// NewPublishedView はPublishedViewを生成し、初回の計算を行う。
// intervalが0以下の場合は定期再計算を行わない。recorderはnilでもよい。
func NewPublishedView(store *collection.Store[model.Tour], interval time.Duration, recorder ViewRecorder) *PublishedView {
	v := &PublishedView{
		store:    store,
		interval: interval,
		recorder: recorder,
	}
	v.refresh(TriggerInit)
	return v
}

// Run はctxがキャンセルされるまで変更通知と定期タイマーに応じてビューを更新する。
func (v *PublishedView) Run(ctx context.Context) {
	notify, cancel := v.store.Subscribe()
	defer cancel()

	// 購読開始までの間に発生した変更を取り込む
	v.refresh(TriggerInit)

	var tick <-chan time.Time
	if v.interval > 0 {
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	slog.Info("published tour view started", slog.Duration("interval", v.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("published tour view stopped")
			return
		case <-notify:
			v.refresh(TriggerNotify)
		case <-tick:
			v.refresh(TriggerTick)
		}
	}
}

// Tours は公開中ツアーのコピーを返す。
func (v *PublishedView) Tours() []model.Tour {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]model.Tour, len(v.tours))
	copy(out, v.tours)
	return out
}

// Find は公開中ツアーから指定IDのものを返す。
func (v *PublishedView) Find(id int) (model.Tour, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, t := range v.tours {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tour{}, false
}

// Version はビューが反映しているコレクションのバージョンを返す。
func (v *PublishedView) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// refresh はコレクションのバージョンが進んでいる場合のみ再計算する。
func (v *PublishedView) refresh(trigger string) {
	if trigger != TriggerInit && v.store.Version() == v.Version() {
		return
	}

	items, version := v.store.SnapshotWithVersion()
	published := make([]model.Tour, 0, len(items))
	for _, t := range items {
		if t.IsPublished() {
			published = append(published, t)
		}
	}

	v.mu.Lock()
	v.tours = published
	v.version = version
	v.mu.Unlock()

	if v.recorder != nil {
		v.recorder.RecordViewRefresh("published_tours", trigger)
	}
}
