// Package media は動画ショーケースの管理操作を提供する。
package media

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/security"
)

// CollectionName は動画コレクションの名前。
const CollectionName = "videos"

const (
	// DefaultThumbnail はサムネイル未指定時の画像。
	DefaultThumbnail = "https://images.pexels.com/photos/3617500/pexels-photo-3617500.jpeg"
	// PlaceholderDuration はアップロード直後の再生時間。
	PlaceholderDuration = "3:00"
)

// embedPrefixes は埋め込みURLとして受け付けるプレフィックス。
var embedPrefixes = []string{
	"https://www.youtube.com/embed/",
	"https://player.vimeo.com/video/",
}

// ValidEmbedURL はurlが許可された埋め込みURLかどうかを返す。
func ValidEmbedURL(url string) bool {
	for _, prefix := range embedPrefixes {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return true
		}
	}
	return false
}

// Service は動画コレクションに対する管理操作を提供する。
type Service struct {
	store     *collection.Store[model.Video]
	sanitizer security.ContentSanitizerService
	now       func() time.Time
}

// NewVideoStore は動画用の共有コレクションを生成する。
func NewVideoStore(seed []model.Video, recorder collection.MutationRecorder) *collection.Store[model.Video] {
	return collection.New(CollectionName, func(v model.Video) int { return v.ID }, seed, recorder)
}

// NewService はServiceを生成する。nowがnilの場合はtime.Now。
func NewService(store *collection.Store[model.Video], sanitizer security.ContentSanitizerService, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     store,
		sanitizer: sanitizer,
		now:       now,
	}
}

// List はフィルタと検索語に一致する動画を返す。
func (s *Service) List(filter model.VideoFilter, search string) ([]model.Video, error) {
	if filter == "" {
		filter = model.VideoFilterAll
	}

	var match func(model.Video) bool
	switch filter {
	case model.VideoFilterAll:
		match = func(model.Video) bool { return true }
	case model.VideoFilterFeatured:
		match = func(v model.Video) bool { return v.Featured }
	case model.VideoFilterPublished:
		match = func(v model.Video) bool { return v.Published }
	case model.VideoFilterDraft:
		match = func(v model.Video) bool { return !v.Published }
	default:
		return nil, model.NewInvalidFilterError(string(filter))
	}

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Video, 0)
	for _, v := range s.store.Snapshot() {
		if !match(v) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(v.Title), term) &&
			!strings.Contains(strings.ToLower(v.Location), term) {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// Add は新しい動画を追加する。IDは件数+1、再生時間はプレースホルダ、
// アップロード日は当日になる。
func (s *Service) Add(ctx context.Context, draft model.VideoDraft) (model.Video, error) {
	// 1. 入力値の整形
	video := model.Video{
		Title:       s.sanitizer.SanitizeText(draft.Title),
		Description: s.sanitizer.SanitizeText(draft.Description),
		Thumbnail:   strings.TrimSpace(draft.Thumbnail),
		VideoURL:    strings.TrimSpace(draft.VideoURL),
		Location:    s.sanitizer.SanitizeText(draft.Location),
		Duration:    PlaceholderDuration,
		Featured:    draft.Featured,
		Published:   true,
		UploadDate:  s.now().Format("2006-01-02"),
	}
	if draft.Published != nil {
		video.Published = *draft.Published
	}
	if video.Thumbnail == "" {
		video.Thumbnail = DefaultThumbnail
	}

	// 2. 検証
	if video.Title == "" || video.Description == "" || video.Location == "" || video.VideoURL == "" {
		return model.Video{}, model.NewValidationError("title, description, location and video URL are required")
	}
	if !ValidEmbedURL(video.VideoURL) {
		return model.Video{}, model.NewInvalidEmbedURLError(video.VideoURL)
	}

	// 3. 追加
	s.store.Update(func(current []model.Video) ([]model.Video, bool) {
		video.ID = len(current) + 1
		return append(current, video), true
	})

	slog.InfoContext(ctx, "video added",
		slog.Int("video_id", video.ID),
		slog.String("title", video.Title),
	)
	return video, nil
}

// ToggleFeatured は注目フラグを切り替える。IDが見つからない場合はfalse。
func (s *Service) ToggleFeatured(ctx context.Context, id int) (model.Video, bool) {
	return s.toggle(ctx, id, "featured", func(v *model.Video) { v.Featured = !v.Featured })
}

// TogglePublished は公開フラグを切り替える。IDが見つからない場合はfalse。
func (s *Service) TogglePublished(ctx context.Context, id int) (model.Video, bool) {
	return s.toggle(ctx, id, "published", func(v *model.Video) { v.Published = !v.Published })
}

// Delete は確認が得られた場合に動画を削除する。
func (s *Service) Delete(ctx context.Context, id int, confirmer collection.Confirmer) (bool, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, "delete video") {
		return false, model.ErrConfirmationRequired
	}
	if !s.store.Remove(id) {
		return false, nil
	}

	slog.InfoContext(ctx, "video deleted", slog.Int("video_id", id))
	return true, nil
}

func (s *Service) toggle(ctx context.Context, id int, field string, flip func(*model.Video)) (model.Video, bool) {
	var updated model.Video
	found := s.store.Update(func(current []model.Video) ([]model.Video, bool) {
		for i := range current {
			if current[i].ID == id {
				flip(&current[i])
				updated = current[i]
				return current, true
			}
		}
		return nil, false
	})
	if !found {
		return model.Video{}, false
	}

	slog.InfoContext(ctx, "video flag toggled",
		slog.Int("video_id", id),
		slog.String("field", field),
	)
	return updated, true
}
