package handler

import (
	"net/http"
	"strconv"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// defaultTravelers は見積もりの既定人数。予約フォームの初期値に合わせる。
const defaultTravelers = 2

// PublishedTours は公開ツアーの派生ビュー。catalog.PublishedViewが実装する。
type PublishedTours interface {
	Tours() []model.Tour
	Find(id int) (model.Tour, bool)
}

// TourHandler は公開ツアーカタログのHTTPハンドラー。
// 公開ページは派生ビューのみを参照し、下書きは返さない。
type TourHandler struct {
	view PublishedTours
}

// NewTourHandler はTourHandlerを生成する。
func NewTourHandler(view PublishedTours) *TourHandler {
	return &TourHandler{view: view}
}

// quoteResponse は料金見積もりのAPIレスポンス。
type quoteResponse struct {
	TourID    int     `json:"tour_id"`
	Title     string  `json:"title"`
	Travelers int     `json:"travelers"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// ListTours は公開中のツアー一覧を返す。
// GET /api/tours
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Tours())
}

// GetTour は公開中のツアー詳細を返す。下書きは存在しないものとして404を返す。
// GET /api/tours/{id}
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	tour, found := h.view.Find(id)
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}

	writeJSON(w, http.StatusOK, tour)
}

// Quote は人数に応じた料金見積もりを返す。
// GET /api/tours/{id}/quote?travelers=N
//
// 人数は1以上かつツアーの最大催行人数以下。省略時は2名。
func (h *TourHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	tour, found := h.view.Find(id)
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}

	travelers := defaultTravelers
	if raw := r.URL.Query().Get("travelers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("人数は整数で指定してください"))
			return
		}
		travelers = n
	}
	if travelers < 1 || travelers > tour.GroupSize {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("人数は1名以上、最大催行人数"+strconv.Itoa(tour.GroupSize)+"名以下で指定してください"))
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		TourID:    tour.ID,
		Title:     tour.Title,
		Travelers: travelers,
		UnitPrice: tour.Price,
		Total:     tour.Price * float64(travelers),
	})
}
