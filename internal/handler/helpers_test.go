package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/wanderluxe/internal/auth"
	"github.com/hitoshi/wanderluxe/internal/middleware"
	"github.com/hitoshi/wanderluxe/internal/repository"
)

// --- テストヘルパー ---

func newTestDirectory(t *testing.T) *auth.Directory {
	t.Helper()
	dir, err := auth.NewDirectory(auth.DefaultSeed(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewDirectory returned error: %v", err)
	}
	return dir
}

// newTestStore は初期化済みのセッションストアを返す。emailが空でなければログイン済みにする。
func newTestStore(t *testing.T, email string) *auth.Store {
	t.Helper()
	ctx := context.Background()
	persist := auth.NewKeyedPersistence(repository.NewMemorySessionRepo(), "client-test", time.Hour)
	store := auth.NewStore(newTestDirectory(t), persist, 0)
	store.Init(ctx)
	if email != "" {
		if _, err := store.Login(ctx, email, auth.SentinelPassword); err != nil {
			t.Fatalf("Login(%q) returned error: %v", email, err)
		}
	}
	return store
}

// withStore はテスト用にリクエストコンテキストへセッションストアを注入するヘルパー。
func withStore(r *http.Request, store *auth.Store) *http.Request {
	return r.WithContext(middleware.ContextWithClient(r.Context(), "client-test", store))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// decodeBody はレスポンスボディをvにデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
}

// mockAuthRecorder はAuthRecorderのモック実装。
type mockAuthRecorder struct {
	results []string
}

func (m *mockAuthRecorder) RecordAuthResult(action, outcome string) {
	m.results = append(m.results, action+":"+outcome)
}
