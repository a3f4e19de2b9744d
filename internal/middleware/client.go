// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/hitoshi/wanderluxe/internal/auth"
)

const (
	// clientCookieName はクライアントIDを保持する署名付きCookieの名前。
	clientCookieName = "wl_client"
	clientIDKey      = "client_id"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	clientIDContextKey = contextKey("client_id")
	storeContextKey    = contextKey("session_store")
)

// ClientRegistry はクライアントIDに対応するセッションストアの取得に必要なインターフェース。
// auth.Registryが実装する。
type ClientRegistry interface {
	Get(ctx context.Context, clientID string) *auth.Store
}

// ClientCookieConfig はクライアントCookieの設定。
type ClientCookieConfig struct {
	Domain string
	MaxAge int // 秒
	Secure bool
}

// NewCookieStore はクライアントCookie用のgorilla/sessionsストアを生成する。
// secretはCookieの署名鍵。
func NewCookieStore(secret []byte, config ClientCookieConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewClientMiddleware は署名付きCookieからクライアントIDを読み取り、
// 対応するセッションストアをリクエストコンテキストに注入するミドルウェアを返す。
// Cookieがない、または署名が不正な場合は新しいクライアントIDを発行する。
func NewClientMiddleware(cookies sessions.Store, registry ClientRegistry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからクライアントを識別
			session, err := cookies.Get(r, clientCookieName)
			if err != nil {
				slog.Debug("discarding unreadable client cookie", slog.String("error", err.Error()))
			}
			if session == nil {
				session = sessions.NewSession(cookies, clientCookieName)
			}

			clientID, _ := session.Values[clientIDKey].(string)
			if clientID == "" {
				// 2. 未識別のクライアントには新しいIDを発行
				clientID = uuid.New().String()
				session.Values[clientIDKey] = clientID
				if err := session.Save(r, w); err != nil {
					slog.Error("failed to issue client cookie", slog.String("error", err.Error()))
					WriteInternalServerError(w)
					return
				}
			}

			// 3. セッションストアを取得（初回は永続ストレージから初期化）
			store := registry.Get(r.Context(), clientID)
			annotateRequest(r.Context(), clientID, store)

			ctx := ContextWithClient(r.Context(), clientID, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext はリクエストコンテキストからクライアントIDを取得する。
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientIDContextKey).(string)
	return clientID, ok && clientID != ""
}

// SessionStoreFromContext はリクエストコンテキストからセッションストアを取得する。
// クライアントミドルウェアを通過したリクエストでのみ有効。
func SessionStoreFromContext(ctx context.Context) (*auth.Store, bool) {
	store, ok := ctx.Value(storeContextKey).(*auth.Store)
	return store, ok && store != nil
}

// ContextWithClient はコンテキストにクライアントIDとセッションストアを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClient(ctx context.Context, clientID string, store *auth.Store) context.Context {
	ctx = context.WithValue(ctx, clientIDContextKey, clientID)
	return context.WithValue(ctx, storeContextKey, store)
}
