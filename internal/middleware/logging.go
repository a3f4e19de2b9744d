package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wanderluxe/internal/auth"
)

// statusRecorder はアクセスログ用に最初に書かれたステータスコードを覚えておく。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// WriteHeaderなしのWriteは暗黙の200。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// requestInfo は内側のミドルウェアが判明させたクライアント情報を
// ロギングミドルウェアへ受け渡すための入れ物。
type requestInfo struct {
	mu       sync.Mutex
	clientID string
	store    *auth.Store
}

var requestInfoContextKey = contextKey("request_info")

// annotateRequest はロギングミドルウェアが用意したrequestInfoにクライアント情報を記録する。
func annotateRequest(ctx context.Context, clientID string, store *auth.Store) {
	info, ok := ctx.Value(requestInfoContextKey).(*requestInfo)
	if !ok {
		return
	}
	info.mu.Lock()
	info.clientID = clientID
	info.store = store
	info.mu.Unlock()
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、route（chiのルートパターン）、status、duration_ms、client_id、
// user_id（認証済みの場合）を含む。
// user_idはレスポンス完了時点のセッション状態から取得するため、ログイン直後のリクエストにも付与される。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			info := &requestInfo{}
			ctx := context.WithValue(r.Context(), requestInfoContextKey, info)

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}

			info.mu.Lock()
			clientID, store := info.clientID, info.store
			info.mu.Unlock()

			if clientID != "" {
				attrs = append(attrs, slog.String("client_id", clientID))
			}
			if store != nil {
				if identity := store.Identity(); identity != nil {
					attrs = append(attrs, slog.String("user_id", identity.ID))
				}
			}

			// slogのログレベルをステータスコードに応じて変更
			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http_request", attrs...)
		})
	}
}
