// Package backoffice は管理画面の閲覧専用データ（予約・顧客・問い合わせ）と
// ダッシュボード集計を提供する。
package backoffice

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// 予約ステータス
const (
	BookingConfirmed = "confirmed"
	BookingPending   = "pending"
	BookingCancelled = "cancelled"
)

// 顧客ステータス
const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

// 問い合わせステータス
const (
	MessageUnread  = "unread"
	MessageRead    = "read"
	MessageReplied = "replied"
)

// 顧客一覧の並び順
const (
	SortRecent   = "recent"
	SortName     = "name"
	SortSpent    = "spent"
	SortBookings = "bookings"
)

// TourSource はダッシュボード集計に使うツアー一覧の取得元。
type TourSource interface {
	Snapshot() []model.Tour
}

// Service は閲覧専用データの検索と集計を行う。
type Service struct {
	bookings  []model.Booking
	customers []model.Customer
	messages  []model.Message
	tours     TourSource
}

// NewService はServiceを生成する。
func NewService(bookings []model.Booking, customers []model.Customer, messages []model.Message, tours TourSource) *Service {
	return &Service{
		bookings:  bookings,
		customers: customers,
		messages:  messages,
		tours:     tours,
	}
}

// Bookings はステータスと検索語（顧客名・ツアー名）で絞り込んだ予約一覧を返す。
func (s *Service) Bookings(status, search string) ([]model.Booking, error) {
	switch status {
	case "", "all", BookingConfirmed, BookingPending, BookingCancelled:
	default:
		return nil, model.NewInvalidFilterError(status)
	}

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if status != "" && status != "all" && b.Status != status {
			continue
		}
		if !containsAny(term, b.CustomerName, b.TourName) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// Customers はステータスと検索語（氏名・メール・所在地）で絞り込み、指定順に並べた顧客一覧を返す。
func (s *Service) Customers(status, search, sortBy string) ([]model.Customer, error) {
	switch status {
	case "", "all", CustomerActive, CustomerInactive:
	default:
		return nil, model.NewInvalidFilterError(status)
	}

	var compare func(a, b model.Customer) int
	switch sortBy {
	case "", SortRecent:
		compare = func(a, b model.Customer) int { return cmp.Compare(b.LastBooking, a.LastBooking) }
	case SortName:
		compare = func(a, b model.Customer) int { return cmp.Compare(a.Name, b.Name) }
	case SortSpent:
		compare = func(a, b model.Customer) int { return cmp.Compare(b.TotalSpent, a.TotalSpent) }
	case SortBookings:
		compare = func(a, b model.Customer) int { return cmp.Compare(b.TotalBookings, a.TotalBookings) }
	default:
		return nil, model.NewInvalidFilterError(sortBy)
	}

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if status != "" && status != "all" && c.Status != status {
			continue
		}
		if !containsAny(term, c.Name, c.Email, c.Location) {
			continue
		}
		result = append(result, c)
	}
	slices.SortStableFunc(result, compare)
	return result, nil
}

// Messages はフィルタ（all, unread, starred）と検索語（送信者・件名・本文）で絞り込んだ問い合わせ一覧を返す。
func (s *Service) Messages(filter, search string) ([]model.Message, error) {
	var match func(model.Message) bool
	switch filter {
	case "", "all":
		match = func(model.Message) bool { return true }
	case MessageUnread:
		match = func(m model.Message) bool { return m.Status == MessageUnread }
	case "starred":
		match = func(m model.Message) bool { return m.Starred }
	default:
		return nil, model.NewInvalidFilterError(filter)
	}

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if !match(m) || !containsAny(term, m.Sender, m.Subject, m.Body) {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

// Summary はダッシュボードの集計値を返す。
// 売上は確定済み予約の金額の合計。
func (s *Service) Summary() model.DashboardSummary {
	var summary model.DashboardSummary

	if s.tours != nil {
		for _, t := range s.tours.Snapshot() {
			summary.TotalTours++
			if t.IsPublished() {
				summary.PublishedTours++
			} else {
				summary.DraftTours++
			}
		}
	}

	summary.TotalBookings = len(s.bookings)
	for _, b := range s.bookings {
		if b.Status == BookingConfirmed {
			summary.Revenue += b.Amount
		}
	}
	for _, m := range s.messages {
		if m.Status == MessageUnread {
			summary.UnreadMessages++
		}
	}
	for _, c := range s.customers {
		if c.Status == CustomerActive {
			summary.ActiveCustomers++
		}
	}
	return summary
}

// containsAny はtermが空か、いずれかのフィールドに大文字小文字を区別せず含まれる場合にtrueを返す。
func containsAny(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
