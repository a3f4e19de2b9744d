// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/wanderluxe/internal/auth"
	"github.com/hitoshi/wanderluxe/internal/middleware"
	"github.com/hitoshi/wanderluxe/internal/model"
)

// 認証操作のメトリクスラベル
const (
	authActionLogin    = "login"
	authActionRegister = "register"
	authActionLogout   = "logout"

	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeEmailExists        = "email_exists"
	outcomeCanceled           = "canceled"
	outcomeError              = "error"
)

// AuthRecorder は認証操作の結果の記録先。
type AuthRecorder interface {
	RecordAuthResult(action, outcome string)
}

// AuthHandler はログイン・登録・ログアウトのHTTPハンドラー。
// セッション状態はクライアントミドルウェアがコンテキストに注入したStoreで管理する。
type AuthHandler struct {
	recorder AuthRecorder
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnilでもよい。
func NewAuthHandler(recorder AuthRecorder) *AuthHandler {
	return &AuthHandler{recorder: recorder}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest は新規登録リクエストのボディ。
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// identityResponse はユーザー情報のAPIレスポンス。
type identityResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        model.Role `json:"role"`
	IsAdmin     bool       `json:"is_admin"`
}

// sessionResponse は現在のセッション状態のAPIレスポンス。
type sessionResponse struct {
	State   string            `json:"state"`
	Pending bool              `json:"pending"`
	User    *identityResponse `json:"user"`
}

// Login はメールアドレスとパスワードでログインする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identity, err := store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, authActionLogin, err)
		return
	}

	h.record(authActionLogin, outcomeSuccess)
	slog.InfoContext(r.Context(), "user logged in",
		slog.String("user_id", identity.ID),
		slog.String("role", string(identity.Role)),
	)
	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}

// Register は新しいアカウントを登録し、そのままログイン状態にする。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)
	if email == "" || displayName == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("メールアドレスと表示名は必須です"))
		return
	}

	identity, err := store.Register(r.Context(), email, req.Password, displayName)
	if err != nil {
		h.fail(w, r, authActionRegister, err)
		return
	}

	h.record(authActionRegister, outcomeSuccess)
	slog.InfoContext(r.Context(), "user registered", slog.String("user_id", identity.ID))
	writeJSON(w, http.StatusCreated, toIdentityResponse(identity))
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	if err := store.Logout(r.Context()); err != nil {
		h.record(authActionLogout, outcomeError)
		handleServiceError(w, err)
		return
	}

	h.record(authActionLogout, outcomeSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッション状態を返す。未認証でも200を返し、userはnullになる。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	resp := sessionResponse{
		State:   store.State().String(),
		Pending: store.Pending(),
	}
	if identity := store.Identity(); identity != nil {
		user := toIdentityResponse(identity)
		resp.User = &user
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

// fail は認証操作の失敗を記録し、エラーレスポンスを書き込む。
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		h.record(action, outcomeInvalidCredentials)
		slog.WarnContext(r.Context(), "authentication failed", slog.String("action", action))
	case errors.Is(err, model.ErrEmailAlreadyExists):
		h.record(action, outcomeEmailExists)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.record(action, outcomeCanceled)
		slog.InfoContext(r.Context(), "authentication canceled", slog.String("action", action))
		w.WriteHeader(http.StatusRequestTimeout)
		return
	default:
		h.record(action, outcomeError)
	}
	handleServiceError(w, err)
}

func (h *AuthHandler) record(action, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordAuthResult(action, outcome)
	}
}

// sessionStore はリクエストコンテキストからセッションストアを取り出す。
// クライアントミドルウェアを経由していない場合は500を書き込む。
func sessionStore(w http.ResponseWriter, r *http.Request) (*auth.Store, bool) {
	store, ok := middleware.SessionStoreFromContext(r.Context())
	if !ok {
		slog.Error("session store missing from request context", slog.String("path", r.URL.Path))
		middleware.WriteInternalServerError(w)
		return nil, false
	}
	return store, true
}

func toIdentityResponse(identity *model.Identity) identityResponse {
	return identityResponse{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        identity.Role,
		IsAdmin:     identity.IsAdmin(),
	}
}
