package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/wanderluxe/internal/auth"
	"github.com/hitoshi/wanderluxe/internal/backoffice"
	"github.com/hitoshi/wanderluxe/internal/catalog"
	"github.com/hitoshi/wanderluxe/internal/config"
	"github.com/hitoshi/wanderluxe/internal/database"
	"github.com/hitoshi/wanderluxe/internal/handler"
	"github.com/hitoshi/wanderluxe/internal/logger"
	"github.com/hitoshi/wanderluxe/internal/media"
	"github.com/hitoshi/wanderluxe/internal/metrics"
	"github.com/hitoshi/wanderluxe/internal/middleware"
	"github.com/hitoshi/wanderluxe/internal/repository"
	"github.com/hitoshi/wanderluxe/internal/security"
	"github.com/hitoshi/wanderluxe/internal/worker/cleanup"
)

// Init はwへのJSONログを既定ロガーに設定してから環境変数の設定を読み込む。
// 設定エラーもJSONログとして出力できるよう、ロガーを先に用意する。
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はos.Args[1:]からサブコマンドを選び、serve・worker・migrate・healthcheckのいずれかを実行する。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheckはコンテナ内から叩くだけなので必須環境変数を要求しない
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return runHealthcheck(ctx, port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("wanderluxe starting",
		slog.String("command", string(cmd)),
		slog.String("description", cmd.Description()),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("session_backend", string(cfg.SessionBackend)),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// sessionBackend はセッション永続化バックエンドと、その死活確認・クローズ処理をまとめる。
type sessionBackend struct {
	name   config.SessionBackend
	repo   repository.SessionRepository
	health repository.HealthChecker // memoryの場合はnil
	close  func() error
}

// openSessionBackend は設定に従ってセッション永続化バックエンドを開く。
func openSessionBackend(ctx context.Context, cfg *config.Config) (*sessionBackend, error) {
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		return &sessionBackend{
			name:   cfg.SessionBackend,
			repo:   repository.NewPostgresSessionRepo(db),
			health: db,
			close:  db.Close,
		}, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite database opened", slog.String("path", cfg.SQLitePath))
		return &sessionBackend{
			name:   cfg.SessionBackend,
			repo:   repository.NewSQLiteSessionRepo(db),
			health: db,
			close:  db.Close,
		}, nil

	case config.BackendMemory:
		return &sessionBackend{
			name:  cfg.SessionBackend,
			repo:  repository.NewMemorySessionRepo(),
			close: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// runServe はSERVER_PORTでlistenし、SIGINT/SIGTERMまでAPIを提供する。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return serve(ctx, cfg, ln)
}

// serve は全依存関係をワイヤリングし、lnでHTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行って返る。
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	// 1. セッション永続化バックエンド
	backend, err := openSessionBackend(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer backend.close()

	// 2. メトリクス
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(promRegistry)

	// 3. 認証（モックアカウントディレクトリとクライアントごとのセッションストア）
	directory, err := auth.NewDirectory(auth.DefaultSeed(), bcrypt.DefaultCost)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to build account directory: %w", err)
	}
	registry := auth.NewRegistry(directory, backend.repo, auth.RegistryConfig{
		CacheSize:  cfg.ClientCacheSize,
		IdleTTL:    cfg.ClientIdleTTL,
		SessionTTL: cfg.SessionTTL(),
		Latency:    cfg.AuthSimulatedLatency,
	})
	collector.ObserveActiveClients(registry.Len)

	// 4. コレクションとドメインサービス
	sanitizer := security.NewContentSanitizer()

	tourStore := catalog.NewTourStore(catalog.SeedTours(), collector)
	tourService := catalog.NewService(tourStore, sanitizer, catalog.ServiceConfig{
		StrictIDs: cfg.CatalogStrictIDs,
	})
	publishedView := catalog.NewPublishedView(tourStore, cfg.CatalogRefreshInterval, collector)

	videoService := media.NewService(media.NewVideoStore(media.SeedVideos(), collector), sanitizer, time.Now)
	backofficeService := backoffice.NewService(
		backoffice.SeedBookings(), backoffice.SeedCustomers(), backoffice.SeedMessages(), tourStore,
	)

	// 5. バックグラウンド処理
	bgCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()

	go publishedView.Run(bgCtx)

	// メモリバックエンドは別プロセスのworkerから見えないため、同一プロセスで掃除する
	if backend.name == config.BackendMemory {
		job := cleanup.NewCleanupJob(backend.repo, slog.Default(), collector)
		job.Backend = string(backend.name)
		go job.Start(bgCtx, cfg.SessionCleanupInterval)
	}

	// 6. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.NewAuthRateLimiterConfig(cfg.RateLimitAuth, cfg.RateLimitAuthAddr))

	deps := &handler.RouterDeps{
		Logger: slog.Default(),
		Cookies: middleware.NewCookieStore([]byte(cfg.SessionSecret), middleware.ClientCookieConfig{
			Domain: cfg.CookieDomain,
			MaxAge: cfg.SessionMaxAge,
			Secure: cfg.CookieSecure,
		}),
		Clients:           registry,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		HSTSMaxAge:        hstsMaxAge(cfg),
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		RateLimiter:       rateLimiter,
		CSRF:              middleware.NewCSRFProtector([]byte(cfg.CSRFSecret)),
		MetricsHandler:    metrics.Handler(promRegistry),
		HTTPMetrics:       collector.Middleware(),
		GuardRecorder:     collector,
		AuthRecorder:      collector,

		PublishedTours:    publishedView,
		TourService:       tourService,
		VideoService:      videoService,
		BackofficeService: backofficeService,
	}
	if backend.health != nil {
		deps.HealthChecker = backend.health
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバー
	server := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", ln.Addr().String()))
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutdown requested, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// runWorker は期限切れセッションの掃除だけを行うプロセスとして動く。
func runWorker(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return work(ctx, cfg)
}

// work はctxがキャンセルされるまでクリーンアップジョブを実行する。
func work(ctx context.Context, cfg *config.Config) error {
	if cfg.SessionBackend == config.BackendMemory {
		return errors.New("worker requires a persistent SESSION_BACKEND (postgres or sqlite)")
	}

	backend, err := openSessionBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	job := cleanup.NewCleanupJob(backend.repo, slog.Default(), nil)
	job.Backend = string(backend.name)

	slog.Info("session cleanup worker started",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	// ブロッキング
	job.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("session cleanup worker stopped")
	return nil
}

// runMigrate はclient_sessionsテーブルのPostgreSQLマイグレーションを最新まで適用する。
// SQLiteはオープン時にスキーマを作成するため対象外。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migrate requires DATABASE_URL")
	}

	slog.Info("applying migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("migrations applied", slog.Uint64("schema_version", uint64(version)))
	return nil
}

// runHealthcheck はローカルの/healthを叩き、200以外ならエラーを返す。
// シェルもcurlもないdistrolessイメージのHEALTHCHECKから使う。
func runHealthcheck(ctx context.Context, port string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:"+port+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はログ出力用にパスワードを伏せたURLを返す。
// URL形式でないDSNはパスワードの位置が分からないため全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

// hstsMaxAge はhttps配信時のみHSTSを有効にする。
func hstsMaxAge(cfg *config.Config) time.Duration {
	if !cfg.CookieSecure {
		return 0
	}
	return 365 * 24 * time.Hour
}
