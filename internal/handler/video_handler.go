package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
)

// VideoServiceInterface は動画管理ハンドラーが必要とするサービスインターフェース。
type VideoServiceInterface interface {
	List(filter model.VideoFilter, search string) ([]model.Video, error)
	Add(ctx context.Context, draft model.VideoDraft) (model.Video, error)
	ToggleFeatured(ctx context.Context, id int) (model.Video, bool)
	TogglePublished(ctx context.Context, id int) (model.Video, bool)
	Delete(ctx context.Context, id int, confirmer collection.Confirmer) (bool, error)
}

// VideoHandler は管理画面の動画ショーケース管理HTTPハンドラー。
type VideoHandler struct {
	service VideoServiceInterface
}

// NewVideoHandler はVideoHandlerを生成する。
func NewVideoHandler(service VideoServiceInterface) *VideoHandler {
	return &VideoHandler{service: service}
}

// ListVideos は動画一覧を返す。
// GET /api/admin/videos?filter=all|featured|published|draft&q=検索語
func (h *VideoHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videos, err := h.service.List(model.VideoFilter(q.Get("filter")), q.Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// CreateVideo は動画を追加する。
// POST /api/admin/videos
func (h *VideoHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var draft model.VideoDraft
	if !decodeJSON(w, r, &draft) {
		return
	}

	video, err := h.service.Add(r.Context(), draft)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

// ToggleFeatured はおすすめ表示を切り替える。
// POST /api/admin/videos/{id}/toggle-featured
func (h *VideoHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleFeatured)
}

// TogglePublished は公開状態を切り替える。
// POST /api/admin/videos/{id}/toggle-published
func (h *VideoHandler) TogglePublished(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.TogglePublished)
}

// DeleteVideo は動画を削除する。?confirm=true がない場合は428を返す。
// DELETE /api/admin/videos/{id}
func (h *VideoHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
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
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("動画", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VideoHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, int) (model.Video, bool)) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	video, found := fn(r.Context(), id)
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("動画", id))
		return
	}
	writeJSON(w, http.StatusOK, video)
}
