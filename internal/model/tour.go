package model

// TourStatus はツアーの公開状態を表す。
type TourStatus string

const (
	// TourStatusPublished は公開中。公開ページに表示される。
	TourStatusPublished TourStatus = "published"
	// TourStatusDraft は下書き。管理画面にのみ表示される。
	TourStatusDraft TourStatus = "draft"
)

// Availability はツアーの空き状況を表す。
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityLimited   Availability = "limited"
	AvailabilitySoldOut   Availability = "soldout"
)

// Tour はツアー商品を表す。
// IDはコレクション内で一意であり、編集によって変化しない。
type Tour struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	Duration      string       `json:"duration"` // 日数
	Rating        float64      `json:"rating"`
	Image         string       `json:"image"`
	Location      string       `json:"location"`
	GroupSize     int          `json:"group_size"`
	Status        TourStatus   `json:"status"`
	Availability  Availability `json:"availability"`
	LastUpdated   string       `json:"last_updated"` // YYYY-MM-DD
	TotalBookings int          `json:"total_bookings"`
}

// IsPublished は公開中かどうかを返す。
func (t Tour) IsPublished() bool {
	return t.Status == TourStatusPublished
}

// TourDraft は管理画面のツアー追加フォームの入力値。
// ID・公開状態・空き状況・更新日・予約数はサーバー側で決定する。
type TourDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Rating      float64 `json:"rating"`
	Image       string  `json:"image"`
	Location    string  `json:"location"`
	GroupSize   int     `json:"group_size"`
}

// TourPatch はツアー編集の部分更新。nilのフィールドは変更しない。
type TourPatch struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	Duration     *string       `json:"duration,omitempty"`
	Rating       *float64      `json:"rating,omitempty"`
	Image        *string       `json:"image,omitempty"`
	Location     *string       `json:"location,omitempty"`
	GroupSize    *int          `json:"group_size,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
}

// TourFilter は管理画面のツアー一覧フィルタ。
type TourFilter string

const (
	TourFilterAll       TourFilter = "all"
	TourFilterPublished TourFilter = "published"
	TourFilterDraft     TourFilter = "draft"
	TourFilterLimited   TourFilter = "limited"
)
