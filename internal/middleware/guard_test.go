package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hitoshi/wanderluxe/internal/model"
)

type mockGuardRecorder struct {
	mu        sync.Mutex
	decisions []string
}

func (m *mockGuardRecorder) RecordGuardDecision(role, decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, role+":"+decision)
}

func TestAccessGuard(t *testing.T) {
	tests := []struct {
		name         string
		role         model.Role
		email        string // 空の場合は未ログイン
		wantStatus   int
		wantLocation string
		wantCalled   bool
		wantDecision string
	}{
		{"未認証はログインへ", "", "", http.StatusSeeOther, "/login", false, ":redirect_login"},
		{"認証済みロール指定なしは通過", "", "user@example.com", http.StatusOK, "", true, ":allow"},
		{"admin専用に一般ユーザーはホームへ", model.RoleAdmin, "user@example.com", http.StatusSeeOther, "/", false, "admin:redirect_home"},
		{"admin専用に管理者は通過", model.RoleAdmin, "admin@wanderluxe.com", http.StatusOK, "", true, "admin:allow"},
		{"user専用に管理者はホームへ", model.RoleUser, "admin@wanderluxe.com", http.StatusSeeOther, "/", false, "user:redirect_home"},
		{"user専用に一般ユーザーは通過", model.RoleUser, "user@example.com", http.StatusOK, "", true, "user:allow"},
		{"admin専用に未認証はログインへ", model.RoleAdmin, "", http.StatusSeeOther, "/login", false, "admin:redirect_login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.email)
			recorder := &mockGuardRecorder{}

			called := false
			handler := NewAccessGuard(tt.role, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := withClient(httptest.NewRequest(http.MethodGet, "/admin", nil), "client-1", store)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if len(recorder.decisions) != 1 || recorder.decisions[0] != tt.wantDecision {
				t.Errorf("decisions = %v, want [%s]", recorder.decisions, tt.wantDecision)
			}
		})
	}
}

func TestAccessGuard_Initializing_ReturnsLoading(t *testing.T) {
	store, release := newInitializingStore(t)
	recorder := &mockGuardRecorder{}

	called := false
	handler := NewAccessGuard(model.RoleAdmin, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := withClient(httptest.NewRequest(http.MethodGet, "/admin", nil), "client-1", store)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if w.Header().Get("Location") != "" {
		t.Error("loading response must not redirect")
	}
	if ra := w.Header().Get("Retry-After"); ra != "1" {
		t.Errorf("Retry-After = %q, want 1", ra)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["status"] != "loading" {
		t.Errorf("status field = %q, want loading", body["status"])
	}
	if called {
		t.Error("handler should not be called while initializing")
	}
	if len(recorder.decisions) != 1 || recorder.decisions[0] != "admin:loading" {
		t.Errorf("decisions = %v", recorder.decisions)
	}

	// 初期化完了後は未認証としてログインへリダイレクト
	release()
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)
	if w2.Code != http.StatusSeeOther || w2.Header().Get("Location") != "/login" {
		t.Errorf("after init: status = %d, Location = %q", w2.Code, w2.Header().Get("Location"))
	}
}

func TestAccessGuard_NoStoreInContext_RedirectsToLogin(t *testing.T) {
	handler := NewAccessGuard(model.RoleUser, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestAccessGuard_LogoutRevokesAccess(t *testing.T) {
	store := newTestStore(t, "admin@wanderluxe.com")
	handler := NewAccessGuard(model.RoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := withClient(httptest.NewRequest(http.MethodGet, "/admin", nil), "client-1", store)

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req)
	if w1.Code != http.StatusOK {
		t.Fatalf("before logout: status = %d", w1.Code)
	}

	if err := store.Logout(req.Context()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)
	if w2.Code != http.StatusSeeOther || w2.Header().Get("Location") != "/login" {
		t.Errorf("after logout: status = %d, Location = %q", w2.Code, w2.Header().Get("Location"))
	}
}
