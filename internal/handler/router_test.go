package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/wanderluxe/internal/auth"
	"github.com/hitoshi/wanderluxe/internal/backoffice"
	"github.com/hitoshi/wanderluxe/internal/catalog"
	"github.com/hitoshi/wanderluxe/internal/media"
	"github.com/hitoshi/wanderluxe/internal/middleware"
	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/repository"
	"github.com/hitoshi/wanderluxe/internal/security"
)

// --- Router統合テスト用ヘルパー ---

type testApp struct {
	server   *httptest.Server
	registry *auth.Registry
	tours    *catalog.Service
	view     *catalog.PublishedView
	health   *mockHealthChecker
}

type mockHealthChecker struct {
	mu  sync.Mutex
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *mockHealthChecker) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// newTestApp は実サービスを結線したルーターでテストサーバーを起動する。
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	registry := auth.NewRegistry(newTestDirectory(t), repository.NewMemorySessionRepo(), auth.RegistryConfig{
		CacheSize:  100,
		SessionTTL: time.Hour,
	})

	sanitizer := security.NewContentSanitizer()
	tourStore := catalog.NewTourStore(catalog.SeedTours(), nil)
	tours := catalog.NewService(tourStore, sanitizer, catalog.ServiceConfig{})
	view := catalog.NewPublishedView(tourStore, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go view.Run(ctx)

	videos := media.NewService(media.NewVideoStore(media.SeedVideos(), nil), sanitizer, time.Now)
	office := backoffice.NewService(backoffice.SeedBookings(), backoffice.SeedCustomers(), backoffice.SeedMessages(), tourStore)

	rl := middleware.NewRateLimiter(middleware.NewAuthRateLimiterConfig(20, 30))
	health := &mockHealthChecker{}

	router := NewRouter(&RouterDeps{
		Cookies:           middleware.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), middleware.ClientCookieConfig{MaxAge: 3600}),
		Clients:           registry,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		CSRF:              middleware.NewCSRFProtector([]byte("csrf-secret")),
		HealthChecker:     health,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "# metrics\n")
		}),
		PublishedTours:    view,
		TourService:       tours,
		VideoService:      videos,
		BackofficeService: office,
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return &testApp{server: server, registry: registry, tours: tours, view: view, health: health}
}

// testClient はCookieを保持しリダイレクトを追跡しないHTTPクライアント。
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
	csrf string
}

func (a *testApp) newClient(t *testing.T) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &testClient{
		t:    t,
		base: a.server.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *testClient) login(email string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "password"})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func (c *testClient) fetchCSRFToken() {
	c.t.Helper()
	resp := c.do(http.MethodGet, "/api/csrf-token", nil)
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.t.Fatalf("decode csrf token: %v", err)
	}
	c.csrf = body.Token
}

func decodeResponse(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// --- テスト ---

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	resp := c.do(http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(resp.Cookies()) != 0 {
		t.Error("/health should not issue a client cookie")
	}

	app.health.setErr(errors.New("db down"))
	resp = c.do(http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t)
	resp := app.newClient(t).do(http.MethodGet, "/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRouter_SecurityAndCORSHeaders(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/tours", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := resp.Header.Get("Cache-Control"); got == "no-store" {
		t.Error("公開カタログにno-storeを付与してはいけない")
	}

	c.login("admin@wanderluxe.com")
	admin := c.do(http.MethodGet, "/api/admin/dashboard", nil)
	if got := admin.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("admin Cache-Control = %q, want no-store", got)
	}
}

func TestRouter_PublicCatalog(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	resp := c.do(http.MethodGet, "/api/tours", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var tours []model.Tour
	decodeResponse(t, resp, &tours)
	if len(tours) != 4 {
		t.Errorf("published tours = %d, want 4", len(tours))
	}

	if resp := c.do(http.MethodGet, "/api/tours/5", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("draft tour status = %d, want 404", resp.StatusCode)
	}
	if resp := c.do(http.MethodGet, "/api/tours/1/quote?travelers=4", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("quote status = %d, want 200", resp.StatusCode)
	}
}

func TestRouter_AccessGuard(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"未認証で管理画面", "", "/api/admin/tours", http.StatusSeeOther, "/login"},
		{"未認証でアカウント", "", "/api/account", http.StatusSeeOther, "/login"},
		{"一般ユーザーで管理画面", "user@example.com", "/api/admin/tours", http.StatusSeeOther, "/"},
		{"管理者でアカウント", "admin@wanderluxe.com", "/api/account", http.StatusSeeOther, "/"},
		{"管理者で管理画面", "admin@wanderluxe.com", "/api/admin/tours", http.StatusOK, ""},
		{"一般ユーザーでアカウント", "user@example.com", "/api/account", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			c := app.newClient(t)
			if tt.email != "" {
				c.login(tt.email)
			}

			resp := c.do(http.MethodGet, tt.path, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if loc := resp.Header.Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
		})
	}
}

func TestRouter_ClientsAreIsolated(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)
	c.login("user@example.com")

	resp := c.do(http.MethodGet, "/auth/me", nil)
	var me sessionResponse
	decodeResponse(t, resp, &me)
	if me.State != "authenticated" || me.User == nil || me.User.ID != "2" {
		t.Fatalf("me = %+v", me)
	}

	// 別のブラウザ（Cookieなし）は未認証
	other := app.newClient(t)
	resp = other.do(http.MethodGet, "/auth/me", nil)
	var otherMe sessionResponse
	decodeResponse(t, resp, &otherMe)
	if otherMe.User != nil {
		t.Error("a different client must not share the session")
	}
	if app.registry.Len() != 2 {
		t.Errorf("registry size = %d, want 2", app.registry.Len())
	}
}

func TestRouter_AdminWriteRequiresCSRFToken(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)
	c.login("admin@wanderluxe.com")

	draft := map[string]any{
		"title": "Patagonia Trek", "description": "Glaciers", "price": 3100, "duration": "9",
		"rating": 4.6, "image": "https://images.pexels.com/photos/1/p.jpeg", "location": "Chile", "group_size": 10,
	}

	if resp := c.do(http.MethodPost, "/api/admin/tours", draft); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("without token: status = %d, want 403", resp.StatusCode)
	}

	c.fetchCSRFToken()
	resp := c.do(http.MethodPost, "/api/admin/tours", draft)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("with token: status = %d, body = %s", resp.StatusCode, body)
	}
}

// TestRouter_AddPublishScenario は追加したツアーを公開すると公開カタログに反映されることを検証する。
func TestRouter_AddPublishScenario(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)
	c.login("admin@wanderluxe.com")
	c.fetchCSRFToken()

	// 1. 追加（下書き）
	resp := c.do(http.MethodPost, "/api/admin/tours", map[string]any{
		"title": "Patagonia Trek", "description": "Glaciers", "price": 3100, "duration": "9",
		"rating": 4.6, "image": "https://images.pexels.com/photos/1/p.jpeg", "location": "Chile", "group_size": 10,
	})
	var created model.Tour
	decodeResponse(t, resp, &created)
	if created.ID != 7 || created.Status != model.TourStatusDraft {
		t.Fatalf("created = %+v", created)
	}

	// 下書きは公開されない
	waitFor(t, func() bool { return app.view.Version() == app.tours.Store().Version() })
	if _, ok := app.view.Find(created.ID); ok {
		t.Fatal("draft should not appear in the published view")
	}

	// 2. 公開
	resp = c.do(http.MethodPost, "/api/admin/tours/7/toggle-status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}

	// 3. 公開カタログに反映される
	waitFor(t, func() bool {
		_, ok := app.view.Find(created.ID)
		return ok
	})
	resp = c.do(http.MethodGet, "/api/tours/7", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("public detail status = %d, want 200", resp.StatusCode)
	}

	// 4. 確認なしの削除は428
	if resp := c.do(http.MethodDelete, "/api/admin/tours/7", nil); resp.StatusCode != http.StatusPreconditionRequired {
		t.Errorf("delete without confirm = %d, want 428", resp.StatusCode)
	}
	if resp := c.do(http.MethodDelete, "/api/admin/tours/7?confirm=true", nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete with confirm = %d, want 204", resp.StatusCode)
	}
	waitFor(t, func() bool {
		_, ok := app.view.Find(created.ID)
		return !ok
	})
}

func TestRouter_LogoutRevokesAdminAccess(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)
	c.login("admin@wanderluxe.com")

	if resp := c.do(http.MethodGet, "/api/admin/dashboard", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}

	if resp := c.do(http.MethodPost, "/auth/logout", nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp := c.do(http.MethodGet, "/api/admin/dashboard", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("after logout: status = %d, Location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestRouter_LoginRateLimit(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	var last int
	for i := 0; i < 21; i++ {
		resp := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "x@example.com", "password": "nope"})
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("21st login status = %d, want 429", last)
	}

	// Cookieを持たずに毎回新しいクライアントとして来ても、同じアドレスからは制限される
	cookieless := &http.Client{}
	limited := false
	for i := 0; i < 15 && !limited; i++ {
		resp, err := cookieless.Post(app.server.URL+"/auth/login", "application/json",
			strings.NewReader(`{"email":"x@example.com","password":"nope"}`))
		if err != nil {
			t.Fatalf("POST /auth/login: %v", err)
		}
		resp.Body.Close()
		limited = resp.StatusCode == http.StatusTooManyRequests
	}
	if !limited {
		t.Error("cookieless logins from the same address should hit the per-address limit")
	}
}

func TestRouter_UnknownRoute_Returns404Or405(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	resp := c.do(http.MethodGet, "/api/unknown", nil)
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 or 405", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Security-Policy"), "default-src") {
		t.Error("security headers should apply to unknown routes")
	}
}
