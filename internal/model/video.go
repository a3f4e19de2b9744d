package model

// Video は動画ショーケースに掲載する動画を表す。
type Video struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoURL    string `json:"video_url"`
	Location    string `json:"location"`
	Duration    string `json:"duration"`
	Featured    bool   `json:"featured"`
	Published   bool   `json:"published"`
	UploadDate  string `json:"upload_date"`
}

// VideoDraft は動画追加フォームの入力値。
// Publishedを省略した場合は公開として扱う。
type VideoDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Thumbnail   string `json:"thumbnail"`
	Location    string `json:"location"`
	Featured    bool   `json:"featured"`
	Published   *bool  `json:"published,omitempty"`
}

// VideoFilter は動画一覧フィルタ。
type VideoFilter string

const (
	VideoFilterAll       VideoFilter = "all"
	VideoFilterFeatured  VideoFilter = "featured"
	VideoFilterPublished VideoFilter = "published"
	VideoFilterDraft     VideoFilter = "draft"
)
