package model

// Booking は予約を表す。管理画面の閲覧専用データ。
type Booking struct {
	ID            int     `json:"id"`
	CustomerName  string  `json:"customer_name"`
	TourName      string  `json:"tour_name"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"` // confirmed, pending, cancelled
	PaymentMethod string  `json:"payment_method"`
	Location      string  `json:"location"`
}

// Customer は顧客を表す。
type Customer struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Location      string  `json:"location"`
	JoinDate      string  `json:"join_date"`
	TotalBookings int     `json:"total_bookings"`
	TotalSpent    float64 `json:"total_spent"`
	Status        string  `json:"status"` // active, inactive
	LastBooking   string  `json:"last_booking"`
}

// Message は問い合わせメッセージを表す。
type Message struct {
	ID      int    `json:"id"`
	Sender  string `json:"sender"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
	Date    string `json:"date"`
	Status  string `json:"status"` // unread, read, replied
	Starred bool   `json:"starred"`
}

// DashboardSummary は管理ダッシュボードの集計値。
type DashboardSummary struct {
	TotalTours      int     `json:"total_tours"`
	PublishedTours  int     `json:"published_tours"`
	DraftTours      int     `json:"draft_tours"`
	TotalBookings   int     `json:"total_bookings"`
	Revenue         float64 `json:"revenue"`
	UnreadMessages  int     `json:"unread_messages"`
	ActiveCustomers int     `json:"active_customers"`
}
