package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/hitoshi/wanderluxe/internal/middleware"
	"github.com/hitoshi/wanderluxe/internal/model"
)

// HealthChecker は/healthで疎通確認する依存先。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Cookies           sessions.Store
	Clients           middleware.ClientRegistry
	CORSAllowedOrigin string
	HSTSMaxAge        time.Duration
	// TrustProxyHeaders がtrueの場合、RealIPでRemoteAddrをプロキシヘッダーの値に置き換える。
	TrustProxyHeaders bool
	RateLimiter       *middleware.RateLimiter
	CSRF              *middleware.CSRFProtector

	// 可観測性（いずれもnil可）
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
	HTTPMetrics    func(http.Handler) http.Handler
	GuardRecorder  middleware.GuardRecorder
	AuthRecorder   AuthRecorder

	// 公開カタログ
	PublishedTours PublishedTours

	// 管理画面
	TourService       TourServiceInterface
	VideoService      VideoServiceInterface
	BackofficeService BackofficeServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → (HTTPMetrics) → Logging → Client
//
// /health と /metrics はクライアントCookieを発行しないようClientミドルウェアの外に配置する。
// /api/account はロールuser、/api/admin はロールadminのアクセスガードで保護し、
// 管理画面の状態変更リクエストにはCSRFトークンを要求する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.SecurityHeadersConfig{HSTSMaxAge: deps.HSTSMaxAge}))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))

	authHandler := NewAuthHandler(deps.AuthRecorder)
	tourHandler := NewTourHandler(deps.PublishedTours)
	adminTourHandler := NewAdminTourHandler(deps.TourService)
	videoHandler := NewVideoHandler(deps.VideoService)
	backofficeHandler := NewBackofficeHandler(deps.BackofficeService)
	accountHandler := NewAccountHandler()

	// --- クライアント識別不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- クライアント識別が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewClientMiddleware(deps.Cookies, deps.Clients))

		r.Method(http.MethodGet, "/api/csrf-token", deps.CSRF.TokenHandler())

		// 認証（ログイン・登録はクライアント単位のレート制限を適用）
		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// 公開ツアーカタログ
		r.Route("/api/tours", func(r chi.Router) {
			r.Get("/", tourHandler.ListTours)
			r.Get("/{id}", tourHandler.GetTour)
			r.Get("/{id}/quote", tourHandler.Quote)
		})

		// アカウントページ（ロールuserのみ）
		r.Route("/api/account", func(r chi.Router) {
			r.Use(middleware.NewAccessGuard(model.RoleUser, deps.GuardRecorder))
			r.Use(middleware.NoStore)
			r.Get("/", accountHandler.GetAccount)
		})

		// 管理画面（ロールadminのみ）
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.NewAccessGuard(model.RoleAdmin, deps.GuardRecorder))
			r.Use(middleware.NoStore)
			r.Use(deps.CSRF.Middleware())

			r.Get("/dashboard", backofficeHandler.Dashboard)
			r.Get("/bookings", backofficeHandler.ListBookings)
			r.Get("/customers", backofficeHandler.ListCustomers)
			r.Get("/messages", backofficeHandler.ListMessages)

			r.Route("/tours", func(r chi.Router) {
				r.Get("/", adminTourHandler.ListTours)
				r.Post("/", adminTourHandler.CreateTour)
				r.Put("/", adminTourHandler.ReplaceTours)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", adminTourHandler.GetTour)
					r.Patch("/", adminTourHandler.UpdateTour)
					r.Delete("/", adminTourHandler.DeleteTour)
					r.Post("/toggle-status", adminTourHandler.ToggleStatus)
				})
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videoHandler.ListVideos)
				r.Post("/", videoHandler.CreateVideo)

				r.Route("/{id}", func(r chi.Router) {
					r.Delete("/", videoHandler.DeleteVideo)
					r.Post("/toggle-featured", videoHandler.ToggleFeatured)
					r.Post("/toggle-published", videoHandler.TogglePublished)
				})
			})
		})
	})

	return r
}

// healthHandler はヘルスチェック用のハンドラーを返す。
// checkerがnilの場合（メモリバックエンド）は常に200を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
