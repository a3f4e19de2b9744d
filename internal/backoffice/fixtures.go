package backoffice

import "github.com/hitoshi/wanderluxe/internal/model"

// SeedBookings は予約の固定データを返す。
func SeedBookings() []model.Booking {
	return []model.Booking{
		{ID: 1, CustomerName: "Emma Watson", TourName: "Greek Islands Luxury Cruise", Date: "2025-04-15", Amount: 2499, Status: BookingConfirmed, PaymentMethod: "credit_card", Location: "Greek Islands"},
		{ID: 2, CustomerName: "James Rodriguez", TourName: "Peruvian Highlands Expedition", Date: "2025-05-02", Amount: 2899, Status: BookingPending, PaymentMethod: "gpay", Location: "Peru"},
		{ID: 3, CustomerName: "Lin Chen", TourName: "Japanese Cherry Blossom Tour", Date: "2025-04-10", Amount: 3299, Status: BookingConfirmed, PaymentMethod: "netbanking", Location: "Japan"},
		{ID: 4, CustomerName: "Aisha Patel", TourName: "Safari Adventures in Tanzania", Date: "2025-06-20", Amount: 4150, Status: BookingConfirmed, PaymentMethod: "credit_card", Location: "Tanzania"},
		{ID: 5, CustomerName: "Michael Brown", TourName: "Amalfi Coast Private Tour", Date: "2025-05-15", Amount: 3750, Status: BookingCancelled, PaymentMethod: "gpay", Location: "Italy"},
	}
}

// SeedCustomers は顧客の固定データを返す。
func SeedCustomers() []model.Customer {
	return []model.Customer{
		{ID: 1, Name: "Emma Watson", Email: "emma.watson@example.com", Phone: "+1 (555) 123-4567", Location: "London, UK", JoinDate: "2025-01-15", TotalBookings: 3, TotalSpent: 8747, Status: CustomerActive, LastBooking: "2025-03-10"},
		{ID: 2, Name: "James Rodriguez", Email: "james.r@example.com", Phone: "+1 (555) 234-5678", Location: "New York, USA", JoinDate: "2025-02-01", TotalBookings: 2, TotalSpent: 5798, Status: CustomerActive, LastBooking: "2025-03-05"},
		{ID: 3, Name: "Lin Chen", Email: "lin.chen@example.com", Phone: "+1 (555) 345-6789", Location: "Singapore", JoinDate: "2025-02-15", TotalBookings: 1, TotalSpent: 3299, Status: CustomerActive, LastBooking: "2025-02-28"},
		{ID: 4, Name: "Aisha Patel", Email: "aisha.p@example.com", Phone: "+1 (555) 456-7890", Location: "Dubai, UAE", JoinDate: "2025-01-20", TotalBookings: 4, TotalSpent: 12450, Status: CustomerActive, LastBooking: "2025-03-12"},
		{ID: 5, Name: "Michael Brown", Email: "michael.b@example.com", Phone: "+1 (555) 567-8901", Location: "Sydney, Australia", JoinDate: "2025-02-10", TotalBookings: 2, TotalSpent: 6249, Status: CustomerInactive, LastBooking: "2025-02-20"},
	}
}

// SeedMessages は問い合わせの固定データを返す。
func SeedMessages() []model.Message {
	return []model.Message{
		{ID: 1, Sender: "Emma Watson", Email: "emma.watson@example.com", Subject: "Question about Greek Islands Tour", Body: "Hi, Im interested in the Greek Islands Luxury Cruise but have some questions about the itinerary...", Date: "2025-03-15 09:30", Status: MessageUnread},
		{ID: 2, Sender: "James Rodriguez", Email: "james.r@example.com", Subject: "Booking Confirmation Request", Body: "Could you please confirm my booking for the Peruvian Highlands Expedition? I havent received...", Date: "2025-03-14 15:45", Status: MessageRead, Starred: true},
		{ID: 3, Sender: "Lin Chen", Email: "lin.chen@example.com", Subject: "Special Dietary Requirements", Body: "Im booked for the Japanese Cherry Blossom Tour and need to inform about my dietary restrictions...", Date: "2025-03-14 11:20", Status: MessageReplied},
		{ID: 4, Sender: "Aisha Patel", Email: "aisha.p@example.com", Subject: "Safari Tour Inquiry", Body: "Hello, I would like to know more about the photography opportunities during the Safari Adventures tour...", Date: "2025-03-13 16:15", Status: MessageUnread},
		{ID: 5, Sender: "Michael Brown", Email: "michael.b@example.com", Subject: "Cancellation Policy", Body: "Can you please provide more information about your cancellation policy? Im considering booking...", Date: "2025-03-13 14:30", Status: MessageRead},
	}
}
