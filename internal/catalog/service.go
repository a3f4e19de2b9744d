// Package catalog はツアーカタログの管理操作と、公開ツアーの派生ビューを提供する。
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/wanderluxe/internal/collection"
	"github.com/hitoshi/wanderluxe/internal/model"
	"github.com/hitoshi/wanderluxe/internal/security"
)

// CollectionName はツアーコレクションの名前。ログとメトリクスのラベルに使用する。
const CollectionName = "tours"

// dateLayout は更新日の書式。
const dateLayout = "2006-01-02"

// ServiceConfig はカタログサービスの設定。
type ServiceConfig struct {
	// StrictIDs がtrueの場合、新規IDを最大ID+1で採番する。
	// falseの場合は件数+1で採番する（削除後の追加でIDが衝突し得る）。
	StrictIDs bool
	// Now は現在時刻を返す関数。nilの場合はtime.Now。
	Now func() time.Time
}

// Service はツアーコレクションに対する管理操作を提供する。
type Service struct {
	store     *collection.Store[model.Tour]
	sanitizer security.ContentSanitizerService
	config    ServiceConfig
}

// NewTourStore はツアー用の共有コレクションを生成する。
func NewTourStore(seed []model.Tour, recorder collection.MutationRecorder) *collection.Store[model.Tour] {
	return collection.New(CollectionName, func(t model.Tour) int { return t.ID }, seed, recorder)
}

// NewService はServiceを生成する。
func NewService(store *collection.Store[model.Tour], sanitizer security.ContentSanitizerService, config ServiceConfig) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Service{
		store:     store,
		sanitizer: sanitizer,
		config:    config,
	}
}

// Store は共有コレクションを返す。
func (s *Service) Store() *collection.Store[model.Tour] {
	return s.store
}

// List はフィルタと検索語に一致するツアーを返す。
// 検索はタイトルと所在地に対する大文字小文字を区別しない部分一致。
func (s *Service) List(filter model.TourFilter, search string) ([]model.Tour, error) {
	if filter == "" {
		filter = model.TourFilterAll
	}

	var match func(model.Tour) bool
	switch filter {
	case model.TourFilterAll:
		match = func(model.Tour) bool { return true }
	case model.TourFilterPublished:
		match = func(t model.Tour) bool { return t.Status == model.TourStatusPublished }
	case model.TourFilterDraft:
		match = func(t model.Tour) bool { return t.Status == model.TourStatusDraft }
	case model.TourFilterLimited:
		match = func(t model.Tour) bool { return t.Availability == model.AvailabilityLimited }
	default:
		return nil, model.NewInvalidFilterError(string(filter))
	}

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Tour, 0)
	for _, t := range s.store.Snapshot() {
		if !match(t) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Location), term) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// Get は指定IDのツアーを返す。
func (s *Service) Get(id int) (model.Tour, bool) {
	return s.store.Find(id)
}

// Add は下書きとして新しいツアーを追加する。
// 公開状態はdraft、空き状況はavailable、予約数は0、更新日は当日になる。
func (s *Service) Add(ctx context.Context, draft model.TourDraft) (model.Tour, error) {
	tour := model.Tour{
		Title:         draft.Title,
		Description:   draft.Description,
		Price:         draft.Price,
		Duration:      draft.Duration,
		Rating:        draft.Rating,
		Image:         strings.TrimSpace(draft.Image),
		Location:      draft.Location,
		GroupSize:     draft.GroupSize,
		Status:        model.TourStatusDraft,
		Availability:  model.AvailabilityAvailable,
		LastUpdated:   s.today(),
		TotalBookings: 0,
	}
	s.sanitize(&tour)
	if err := validateTour(tour); err != nil {
		return model.Tour{}, err
	}

	s.store.Update(func(current []model.Tour) ([]model.Tour, bool) {
		tour.ID = s.nextID(current)
		return append(current, tour), true
	})

	slog.InfoContext(ctx, "tour added",
		slog.Int("tour_id", tour.ID),
		slog.String("title", tour.Title),
	)
	return tour, nil
}

// Edit はpatchの非nilフィールドを指定IDのツアーに反映し、更新日を当日にする。
// IDは変更されない。IDが見つからない場合は何もせずfalseを返す。
func (s *Service) Edit(ctx context.Context, id int, patch model.TourPatch) (model.Tour, bool, error) {
	var (
		updated  model.Tour
		validErr error
	)

	found := s.store.Update(func(current []model.Tour) ([]model.Tour, bool) {
		for i, t := range current {
			if t.ID != id {
				continue
			}
			// 触れていないフィールドは再サニタイズしない
			applyPatch(&t, s.sanitizePatch(patch))
			if err := validateTour(t); err != nil {
				validErr = err
				return nil, false
			}
			t.ID = id
			t.LastUpdated = s.today()
			current[i] = t
			updated = t
			return current, true
		}
		return nil, false
	})

	if validErr != nil {
		return model.Tour{}, true, validErr
	}
	if !found {
		slog.DebugContext(ctx, "edit ignored for unknown tour", slog.Int("tour_id", id))
		return model.Tour{}, false, nil
	}

	slog.InfoContext(ctx, "tour updated", slog.Int("tour_id", id))
	return updated, true, nil
}

// ToggleStatus は指定IDのツアーの公開状態を published と draft の間で切り替える。
// IDが見つからない場合は何もせずfalseを返す。
func (s *Service) ToggleStatus(ctx context.Context, id int) (model.Tour, bool) {
	var updated model.Tour

	found := s.store.Update(func(current []model.Tour) ([]model.Tour, bool) {
		for i, t := range current {
			if t.ID != id {
				continue
			}
			if t.Status == model.TourStatusPublished {
				t.Status = model.TourStatusDraft
			} else {
				t.Status = model.TourStatusPublished
			}
			current[i] = t
			updated = t
			return current, true
		}
		return nil, false
	})

	if !found {
		slog.DebugContext(ctx, "status toggle ignored for unknown tour", slog.Int("tour_id", id))
		return model.Tour{}, false
	}

	slog.InfoContext(ctx, "tour status toggled",
		slog.Int("tour_id", id),
		slog.String("status", string(updated.Status)),
	)
	return updated, true
}

// Delete は確認が得られた場合に指定IDのツアーを削除する。
// 確認が得られない場合は model.ErrConfirmationRequired を返す。
// IDが見つからない場合は何もせずfalseを返す。
func (s *Service) Delete(ctx context.Context, id int, confirmer collection.Confirmer) (bool, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, "delete tour") {
		return false, model.ErrConfirmationRequired
	}

	if !s.store.Remove(id) {
		slog.DebugContext(ctx, "delete ignored for unknown tour", slog.Int("tour_id", id))
		return false, nil
	}

	slog.InfoContext(ctx, "tour deleted", slog.Int("tour_id", id))
	return true, nil
}

// ReplaceAll はツアー一覧を一括で置き換える。
// toursがnilの場合はコレクション側でログ出力のみ行われ、変更されずnilを返す。
//
// 各レコードはサニタイズ後にAdd/Editと同じ検証を受け、IDは正の値で重複してはならない。
// 1件でも不正なレコードがあれば何も変更せず検証エラーを返す。
func (s *Service) ReplaceAll(ctx context.Context, tours []model.Tour) error {
	if tours == nil {
		s.store.ReplaceAll(nil)
		return nil
	}

	seen := make(map[int]struct{}, len(tours))
	for i := range tours {
		t := &tours[i]
		s.sanitize(t)
		t.Image = strings.TrimSpace(t.Image)
		if err := validateTour(*t); err != nil {
			return recordError(i, err)
		}
		if t.ID <= 0 {
			return recordError(i, model.NewValidationError("id must be positive"))
		}
		if t.TotalBookings < 0 {
			return recordError(i, model.NewValidationError("total bookings must not be negative"))
		}
		if _, dup := seen[t.ID]; dup {
			return recordError(i, model.NewValidationError(fmt.Sprintf("duplicate id %d", t.ID)))
		}
		seen[t.ID] = struct{}{}
	}

	s.store.ReplaceAll(tours)
	slog.InfoContext(ctx, "tours replaced", slog.Int("count", len(tours)))
	return nil
}

// recordError は一括置換のどのレコードが不正だったかをメッセージに付け加える。
func recordError(index int, err error) error {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("tours[%d]: %w", index, err)
	}
	wrapped := *apiErr
	wrapped.Message = fmt.Sprintf("tours[%d]: %s", index, apiErr.Message)
	return &wrapped
}

func (s *Service) nextID(current []model.Tour) int {
	if !s.config.StrictIDs {
		return len(current) + 1
	}
	maxID := 0
	for _, t := range current {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

func (s *Service) today() string {
	return s.config.Now().Format(dateLayout)
}

func (s *Service) sanitize(t *model.Tour) {
	if s.sanitizer == nil {
		return
	}
	t.Title = s.sanitizer.SanitizeText(t.Title)
	t.Location = s.sanitizer.SanitizeText(t.Location)
	t.Duration = s.sanitizer.SanitizeText(t.Duration)
	t.Description = s.sanitizer.SanitizeHTML(t.Description)
}

// sanitizePatch はpatchで指定されたテキストフィールドだけをサニタイズしたコピーを返す。
func (s *Service) sanitizePatch(p model.TourPatch) model.TourPatch {
	if s.sanitizer == nil {
		return p
	}
	text := func(v *string) *string {
		if v == nil {
			return nil
		}
		c := s.sanitizer.SanitizeText(*v)
		return &c
	}
	p.Title = text(p.Title)
	p.Location = text(p.Location)
	p.Duration = text(p.Duration)
	if p.Description != nil {
		d := s.sanitizer.SanitizeHTML(*p.Description)
		p.Description = &d
	}
	return p
}

func applyPatch(t *model.Tour, p model.TourPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Rating != nil {
		t.Rating = *p.Rating
	}
	if p.Image != nil {
		t.Image = strings.TrimSpace(*p.Image)
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.GroupSize != nil {
		t.GroupSize = *p.GroupSize
	}
	if p.Availability != nil {
		t.Availability = *p.Availability
	}
}

// validateTour はフォーム入力相当の検証を行う。
func validateTour(t model.Tour) error {
	switch {
	case t.Title == "":
		return model.NewValidationError("title is required")
	case t.Description == "":
		return model.NewValidationError("description is required")
	case t.Location == "":
		return model.NewValidationError("location is required")
	case t.Duration == "":
		return model.NewValidationError("duration is required")
	case t.Image == "":
		return model.NewValidationError("image is required")
	case t.Price <= 0:
		return model.NewValidationError("price must be positive")
	case t.Rating < 0 || t.Rating > 5:
		return model.NewValidationError("rating must be between 0 and 5")
	case t.GroupSize < 1:
		return model.NewValidationError("group size must be at least 1")
	}

	switch t.Availability {
	case model.AvailabilityAvailable, model.AvailabilityLimited, model.AvailabilitySoldOut:
	default:
		return model.NewValidationError("unknown availability")
	}

	switch t.Status {
	case model.TourStatusPublished, model.TourStatusDraft:
	default:
		return model.NewValidationError("unknown status")
	}
	return nil
}
