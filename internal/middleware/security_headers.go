package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// SecurityHeadersConfig はセキュリティヘッダーの可変部分。
type SecurityHeadersConfig struct {
	// HSTSMaxAge が正の場合のみStrict-Transport-Securityを付与する。
	// BASE_URLがhttpsのときに設定する。
	HSTSMaxAge time.Duration
}

// NewSecurityHeadersMiddleware は全レスポンスにセキュリティヘッダーを付与するミドルウェアを返す。
// APIはJSONしか返さないため、CSPはリソース読み込みとフレーム埋め込みをすべて禁止する。
func NewSecurityHeadersMiddleware(cfg SecurityHeadersConfig) func(next http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":     "nosniff",
		"X-Frame-Options":            "DENY",
		"Referrer-Policy":            "same-origin",
		"Content-Security-Policy":    "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		"Cross-Origin-Opener-Policy": "same-origin",
	}
	if cfg.HSTSMaxAge > 0 {
		headers["Strict-Transport-Security"] = "max-age=" + strconv.Itoa(int(cfg.HSTSMaxAge.Seconds())) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range headers {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore はアカウント・管理画面などロール依存のレスポンスを
// 共有キャッシュやブラウザ履歴に残さないようにする。
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
