// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証操作の結果ラベル
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeEmailExists        = "email_exists"
	OutcomeError              = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー、アクセスガード、コレクションストア、派生ビューから利用する。
type MetricsCollector interface {
	RecordAuthResult(action, outcome string)
	RecordGuardDecision(role, decision string)
	RecordCollectionMutation(collection string, version uint64, size int)
	RecordViewRefresh(view, trigger string)
	RecordSessionCleanup(deleted int64, err error)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authResults         *prometheus.CounterVec
	guardDecisions      *prometheus.CounterVec
	collectionMutations *prometheus.CounterVec
	collectionVersion   *prometheus.GaugeVec
	collectionSize      *prometheus.GaugeVec
	viewRefreshes       *prometheus.CounterVec
	sessionCleanupRuns  *prometheus.CounterVec
	sessionsPurged      prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec

	reg prometheus.Registerer
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_auth_results_total",
			Help: "ログイン・登録・ログアウトの結果別件数",
		}, []string{"action", "outcome"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_guard_decisions_total",
			Help: "アクセスガードの判定結果別件数",
		}, []string{"role", "decision"}),
		collectionMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_collection_mutations_total",
			Help: "コレクションの更新回数",
		}, []string{"collection"}),
		collectionVersion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wanderluxe_collection_version",
			Help: "コレクションの現在のバージョン",
		}, []string{"collection"}),
		collectionSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wanderluxe_collection_size",
			Help: "コレクションの現在の要素数",
		}, []string{"collection"}),
		viewRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_view_refreshes_total",
			Help: "派生ビューの再計算回数",
		}, []string{"view", "trigger"}),
		sessionCleanupRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_session_cleanup_runs_total",
			Help: "期限切れセッション削除ジョブの実行回数",
		}, []string{"outcome"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderluxe_sessions_purged_total",
			Help: "削除された期限切れセッション数",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderluxe_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"code", "method"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wanderluxe_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		reg: reg,
	}

	reg.MustRegister(
		c.authResults,
		c.guardDecisions,
		c.collectionMutations,
		c.collectionVersion,
		c.collectionSize,
		c.viewRefreshes,
		c.sessionCleanupRuns,
		c.sessionsPurged,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordAuthResult は認証操作の結果を記録する。
func (c *Collector) RecordAuthResult(action, outcome string) {
	c.authResults.WithLabelValues(action, outcome).Inc()
}

// RecordGuardDecision はアクセスガードの判定結果を記録する。
// roleが空の場合は "any" として記録する。
func (c *Collector) RecordGuardDecision(role, decision string) {
	if role == "" {
		role = "any"
	}
	c.guardDecisions.WithLabelValues(role, decision).Inc()
}

// RecordCollectionMutation はコレクションの更新とその時点のバージョン・要素数を記録する。
func (c *Collector) RecordCollectionMutation(collection string, version uint64, size int) {
	c.collectionMutations.WithLabelValues(collection).Inc()
	c.collectionVersion.WithLabelValues(collection).Set(float64(version))
	c.collectionSize.WithLabelValues(collection).Set(float64(size))
}

// RecordViewRefresh は派生ビューの再計算を記録する。
func (c *Collector) RecordViewRefresh(view, trigger string) {
	c.viewRefreshes.WithLabelValues(view, trigger).Inc()
}

// RecordSessionCleanup は期限切れセッション削除ジョブの1回分の結果を記録する。
func (c *Collector) RecordSessionCleanup(deleted int64, err error) {
	if err != nil {
		c.sessionCleanupRuns.WithLabelValues(OutcomeError).Inc()
		return
	}
	c.sessionCleanupRuns.WithLabelValues(OutcomeSuccess).Inc()
	c.sessionsPurged.Add(float64(deleted))
}

// ObserveActiveClients はメモリ上のセッションストア数を返す関数をゲージとして登録する。
func (c *Collector) ObserveActiveClients(count func() int) {
	c.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wanderluxe_active_clients",
		Help: "メモリ上に保持しているクライアントのセッションストア数",
	}, func() float64 {
		return float64(count())
	}))
}

// Middleware はHTTPリクエストのステータスコードと処理時間を記録するミドルウェアを返す。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerDuration(c.httpLatency,
			promhttp.InstrumentHandlerCounter(c.httpRequests, next))
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
