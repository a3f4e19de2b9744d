package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/security"
)

func newTestService() *Service {
	now := func() time.Time { return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC) }
	return NewService(NewVideoStore(SeedVideos(), nil), security.NewContentSanitizer(), now)
}

func validDraft() model.VideoDraft {
	return model.VideoDraft{
		Title:       "Patagonia Glaciers",
		Description: "Ice fields at the end of the world.",
		VideoURL:    "https://www.youtube.com/embed/abc123",
		Location:    "Patagonia, Chile",
	}
}

func TestValidEmbedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://www.youtube.com/embed/abc123", want: true},
		{url: "https://player.vimeo.com/video/253989945", want: true},
		{url: "https://www.youtube.com/watch?v=abc123", want: false},
		{url: "http://www.youtube.com/embed/abc123", want: false},
		{url: "https://www.youtube.com/embed/", want: false},
		{url: "", want: false},
	}
	for _, tt := range tests {
		if got := ValidEmbedURL(tt.url); got != tt.want {
			t.Errorf("ValidEmbedURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestAdd_Defaults(t *testing.T) {
	svc := newTestService()

	video, err := svc.Add(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if video.ID != 6 {
		t.Errorf("ID = %d, want 6", video.ID)
	}
	if video.Duration != PlaceholderDuration {
		t.Errorf("Duration = %q, want %q", video.Duration, PlaceholderDuration)
	}
	if video.Thumbnail != DefaultThumbnail {
		t.Errorf("Thumbnail = %q, want default", video.Thumbnail)
	}
	if !video.Published {
		t.Error("Published should default to true")
	}
	if video.UploadDate != "2025-03-20" {
		t.Errorf("UploadDate = %q, want 2025-03-20", video.UploadDate)
	}
}

func TestAdd_ExplicitDraft(t *testing.T) {
	svc := newTestService()
	draft := validDraft()
	unpublished := false
	draft.Published = &unpublished
	draft.Thumbnail = "https://images.pexels.com/photos/1/custom.jpeg"

	video, err := svc.Add(context.Background(), draft)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if video.Published {
		t.Error("Published should be false")
	}
	if video.Thumbnail != draft.Thumbnail {
		t.Errorf("Thumbnail = %q, want %q", video.Thumbnail, draft.Thumbnail)
	}
}

func TestAdd_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(d *model.VideoDraft)
		wantCode string
	}{
		{name: "タイトル空", modify: func(d *model.VideoDraft) { d.Title = "" }, wantCode: model.ErrCodeValidation},
		{name: "URL空", modify: func(d *model.VideoDraft) { d.VideoURL = "" }, wantCode: model.ErrCodeValidation},
		{name: "埋め込みでないURL", modify: func(d *model.VideoDraft) { d.VideoURL = "https://example.com/video.mp4" }, wantCode: model.ErrCodeInvalidEmbedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			draft := validDraft()
			tt.modify(&draft)

			_, err := svc.Add(context.Background(), draft)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Fatalf("err = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestToggles(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	video, ok := svc.ToggleFeatured(ctx, 3)
	if !ok || !video.Featured {
		t.Errorf("ToggleFeatured(3) = (%+v, %v), want featured", video, ok)
	}

	video, ok = svc.TogglePublished(ctx, 5)
	if !ok || !video.Published {
		t.Errorf("TogglePublished(5) = (%+v, %v), want published", video, ok)
	}

	if _, ok := svc.ToggleFeatured(ctx, 42); ok {
		t.Error("ToggleFeatured should report false for unknown id")
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Delete(ctx, 1, collection.Confirmed(false)); !errors.Is(err, model.ErrConfirmationRequired) {
		t.Errorf("err = %v, want ErrConfirmationRequired", err)
	}

	deleted, err := svc.Delete(ctx, 1, collection.Confirmed(true))
	if err != nil || !deleted {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", deleted, err)
	}

	all, _ := svc.List(model.VideoFilterAll, "")
	if len(all) != 4 {
		t.Errorf("len = %d, want 4", len(all))
	}
}

func TestList(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		filter  model.VideoFilter
		search  string
		wantIDs []int
	}{
		{filter: model.VideoFilterAll, wantIDs: []int{1, 2, 3, 4, 5}},
		{filter: model.VideoFilterFeatured, wantIDs: []int{1, 2}},
		{filter: model.VideoFilterPublished, wantIDs: []int{1, 2, 3, 4}},
		{filter: model.VideoFilterDraft, wantIDs: []int{5}},
		{filter: model.VideoFilterAll, search: "tanzania", wantIDs: []int{3}},
		{filter: model.VideoFilterFeatured, search: "greece", wantIDs: []int{2}},
	}

	for _, tt := range tests {
		got, err := svc.List(tt.filter, tt.search)
		if err != nil {
			t.Fatalf("List(%q, %q) returned error: %v", tt.filter, tt.search, err)
		}
		if len(got) != len(tt.wantIDs) {
			t.Errorf("List(%q, %q) len = %d, want %d", tt.filter, tt.search, len(got), len(tt.wantIDs))
			continue
		}
		for i, id := range tt.wantIDs {
			if got[i].ID != id {
				t.Errorf("List(%q, %q)[%d].ID = %d, want %d", tt.filter, tt.search, i, got[i].ID, id)
			}
		}
	}

	if _, err := svc.List("trending", ""); err == nil {
		t.Error("expected error for unknown filter")
	}
}
