package middleware

import (
	"net/http"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// アクセスガードの判定結果
const (
	GuardLoading = "loading"
	GuardLogin   = "redirect_login"
	GuardHome    = "redirect_home"
	GuardAllow   = "allow"
)

const (
	loginPath = "/login"
	homePath  = "/"
)

// GuardRecorder はアクセスガードの判定結果の記録先。
type GuardRecorder interface {
	RecordGuardDecision(role, decision string)
}

// NewAccessGuard は保護されたハンドラーの前段でセッション状態を確認するミドルウェアを返す。
//
//  1. セッションストアが初期化中の場合は503とローディング応答のみを返す（リダイレクト判定を行わない）
//  2. 未認証の場合は /login へ303でリダイレクトする
//  3. roleが指定され、現在のロールと完全一致しない場合は / へ303でリダイレクトする
//     ロールの包含関係はない。adminはuser専用のルートを満たさない
//  4. それ以外は後続のハンドラーをそのまま実行する
//
// recorderはnilでもよい。
func NewAccessGuard(role model.Role, recorder GuardRecorder) func(next http.Handler) http.Handler {
	record := func(decision string) {
		if recorder != nil {
			recorder.RecordGuardDecision(string(role), decision)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := SessionStoreFromContext(r.Context())
			if !ok {
				record(GuardLogin)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			if store.Initializing() {
				record(GuardLoading)
				writeLoadingResponse(w)
				return
			}

			identity := store.Identity()
			if identity == nil {
				record(GuardLogin)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			if role != "" && identity.Role != role {
				record(GuardHome)
				http.Redirect(w, r, homePath, http.StatusSeeOther)
				return
			}

			record(GuardAllow)
			next.ServeHTTP(w, r)
		})
	}
}

// writeLoadingResponse は初期化中を示すプレースホルダー応答を書き込む。
func writeLoadingResponse(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}
