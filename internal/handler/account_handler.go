package handler

import (
	"net/http"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// AccountHandler は一般ユーザーのアカウントページのHTTPハンドラー。
// ロールuserのアクセスガードの内側に配置する。
type AccountHandler struct{}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// GetAccount はログイン中のユーザー情報を返す。
// GET /api/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	identity := store.Identity()
	if identity == nil {
		// ガードを通過した後にログアウトされた場合
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}
