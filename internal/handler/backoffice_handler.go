package handler

import (
	"net/http"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// BackofficeServiceInterface は管理画面の閲覧専用データを提供するサービスインターフェース。
type BackofficeServiceInterface interface {
	Bookings(status, search string) ([]model.Booking, error)
	Customers(status, search, sortBy string) ([]model.Customer, error)
	Messages(filter, search string) ([]model.Message, error)
	Summary() model.DashboardSummary
}

// BackofficeHandler は予約・顧客・メッセージ・ダッシュボードのHTTPハンドラー。
type BackofficeHandler struct {
	service BackofficeServiceInterface
}

// NewBackofficeHandler はBackofficeHandlerを生成する。
func NewBackofficeHandler(service BackofficeServiceInterface) *BackofficeHandler {
	return &BackofficeHandler{service: service}
}

// ListBookings は予約一覧を返す。
// GET /api/admin/bookings?status=all|confirmed|pending|cancelled&q=検索語
func (h *BackofficeHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bookings, err := h.service.Bookings(q.Get("status"), q.Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ListCustomers は顧客一覧を返す。
// GET /api/admin/customers?status=all|active|inactive&q=検索語&sort=recent|name|spent|bookings
func (h *BackofficeHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, err := h.service.Customers(q.Get("status"), q.Get("q"), q.Get("sort"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// ListMessages は問い合わせメッセージ一覧を返す。
// GET /api/admin/messages?filter=all|unread|starred&q=検索語
func (h *BackofficeHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	messages, err := h.service.Messages(q.Get("filter"), q.Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Dashboard は管理ダッシュボードの集計値を返す。
// GET /api/admin/dashboard
func (h *BackofficeHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Summary())
}
