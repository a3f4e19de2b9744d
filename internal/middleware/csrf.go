package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
)

// csrfHeaderName はリクエストヘッダーからCSRFトークンを読み取る際のヘッダー名。
const csrfHeaderName = "X-CSRF-Token"

// CSRFProtector はクライアントIDに紐づくCSRFトークンの発行と検証を行う。
// トークンはクライアントIDのHMAC-SHA256であり、サーバー側に状態を持たない。
type CSRFProtector struct {
	secret []byte
}

// NewCSRFProtector はCSRFProtectorを生成する。secretはトークンの署名鍵。
func NewCSRFProtector(secret []byte) *CSRFProtector {
	return &CSRFProtector{secret: secret}
}

// Token はクライアントIDに対応するCSRFトークンを返す。
func (p *CSRFProtector) Token(clientID string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(clientID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// valid はトークンがクライアントIDに対応するかを定数時間で比較する。
func (p *CSRFProtector) valid(clientID, token string) bool {
	if token == "" {
		return false
	}
	return hmac.Equal([]byte(p.Token(clientID)), []byte(token))
}

// Middleware はCSRFトークン検証ミドルウェアを返す。
// 安全なメソッド（GET, HEAD, OPTIONS）は検証をスキップする。
// 状態変更メソッド（POST, PUT, PATCH, DELETE）はX-CSRF-Tokenヘッダーの検証を必須とする。
// クライアントミドルウェアの後に配置すること。
func (p *CSRFProtector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			clientID, ok := ClientIDFromContext(r.Context())
			if !ok {
				slog.Warn("CSRF validation failed: unidentified client",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			if !p.valid(clientID, r.Header.Get(csrfHeaderName)) {
				slog.Warn("CSRF validation failed: token mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("client_id", clientID),
				)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TokenHandler はCSRFトークン取得エンドポイントのハンドラーを返す。
// GET /api/csrf-token
func (p *CSRFProtector) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := ClientIDFromContext(r.Context())
		if !ok {
			WriteInternalServerError(w)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		WriteJSON(w, http.StatusOK, map[string]string{
			"token": p.Token(clientID),
		})
	})
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
