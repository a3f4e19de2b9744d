package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
)

// maxReplaceBodySize は一括置換リクエストのボディ上限。
const maxReplaceBodySize = 1 << 20

// TourServiceInterface は管理画面のツアーハンドラーが必要とするサービスインターフェース。
type TourServiceInterface interface {
	List(filter model.TourFilter, search string) ([]model.Tour, error)
	Get(id int) (model.Tour, bool)
	Add(ctx context.Context, draft model.TourDraft) (model.Tour, error)
	Edit(ctx context.Context, id int, patch model.TourPatch) (model.Tour, bool, error)
	ToggleStatus(ctx context.Context, id int) (model.Tour, bool)
	Delete(ctx context.Context, id int, confirmer collection.Confirmer) (bool, error)
	ReplaceAll(ctx context.Context, tours []model.Tour) error
}

// AdminTourHandler は管理画面のツアー管理HTTPハンドラー。
type AdminTourHandler struct {
	service TourServiceInterface
}

// NewAdminTourHandler はAdminTourHandlerを生成する。
func NewAdminTourHandler(service TourServiceInterface) *AdminTourHandler {
	return &AdminTourHandler{service: service}
}

// ListTours は下書きを含むツアー一覧を返す。
// GET /api/admin/tours?filter=all|published|draft|limited&q=検索語
func (h *AdminTourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tours, err := h.service.List(model.TourFilter(q.Get("filter")), q.Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tours)
}

// GetTour はツアー詳細を返す。
// GET /api/admin/tours/{id}
func (h *AdminTourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	tour, found := h.service.Get(id)
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}
	writeJSON(w, http.StatusOK, tour)
}

// CreateTour はツアーを下書きとして追加する。
// POST /api/admin/tours
func (h *AdminTourHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var draft model.TourDraft
	if !decodeJSON(w, r, &draft) {
		return
	}

	tour, err := h.service.Add(r.Context(), draft)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tour)
}

// UpdateTour はツアーを部分更新する。IDは変更されない。
// PATCH /api/admin/tours/{id}
func (h *AdminTourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var patch model.TourPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	tour, found, err := h.service.Edit(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}
	writeJSON(w, http.StatusOK, tour)
}

// ToggleStatus は公開状態を切り替える。
// POST /api/admin/tours/{id}/toggle-status
func (h *AdminTourHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	tour, found := h.service.ToggleStatus(r.Context(), id)
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}
	writeJSON(w, http.StatusOK, tour)
}

// DeleteTour はツアーを削除する。?confirm=true がない場合は428を返し何も変更しない。
// DELETE /api/admin/tours/{id}
func (h *AdminTourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, collection.Confirmed(isConfirmed(r)))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !deleted {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツアー", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceTours はツアー一覧を一括で置き換える。
// PUT /api/admin/tours
//
// ボディが配列として解釈できない場合は何も変更せず、呼び出し元にもエラーを返さない。
// 配列だが不正なレコード（検証エラー・ID重複・未知の状態）を含む場合は何も変更せず400を返す。
func (h *AdminTourHandler) ReplaceTours(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxReplaceBodySize))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	var tours []model.Tour
	if err := json.Unmarshal(body, &tours); err != nil {
		slog.DebugContext(r.Context(), "replace body is not a tour array", slog.String("error", err.Error()))
		tours = nil
	}

	if err := h.service.ReplaceAll(r.Context(), tours); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
