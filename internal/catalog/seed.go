package catalog

import "github.com/hitoshi/wanderluxe/internal/model"

// SeedTours は起動時のツアー一覧を返す。公開4件、下書き2件。
func SeedTours() []model.Tour {
	return []model.Tour{
		{
			ID:            1,
			Title:         "Greek Islands Luxury Cruise",
			Description:   "Experience the breathtaking beauty of the Greek Islands on our luxury cruise.",
			Price:         2499,
			Duration:      "10",
			Rating:        4.9,
			GroupSize:     12,
			Image:         "https://images.pexels.com/photos/1268855/pexels-photo-1268855.jpeg",
			Location:      "Greek Islands",
			Status:        model.TourStatusPublished,
			Availability:  model.AvailabilityLimited,
			LastUpdated:   "2025-03-10",
			TotalBookings: 24,
		},
		{
			ID:            2,
			Title:         "Japanese Cherry Blossom Tour",
			Description:   "Immerse yourself in the magic of Japan during cherry blossom season.",
			Price:         3299,
			Duration:      "12",
			Rating:        4.8,
			GroupSize:     10,
			Image:         "https://images.pexels.com/photos/1440476/pexels-photo-1440476.jpeg",
			Location:      "Japan",
			Status:        model.TourStatusPublished,
			Availability:  model.AvailabilityAvailable,
			LastUpdated:   "2025-03-05",
			TotalBookings: 18,
		},
		{
			ID:            3,
			Title:         "Peruvian Highlands Expedition",
			Description:   "Discover ancient Incan ruins and breathtaking mountain vistas in Peru.",
			Price:         2899,
			Duration:      "14",
			Rating:        4.7,
			GroupSize:     8,
			Image:         "https://images.pexels.com/photos/2356045/pexels-photo-2356045.jpeg",
			Location:      "Peru",
			Status:        model.TourStatusPublished,
			Availability:  model.AvailabilityAvailable,
			LastUpdated:   "2025-02-28",
			TotalBookings: 12,
		},
		{
			ID:            4,
			Title:         "African Safari Adventure",
			Description:   "Experience the ultimate wildlife safari across the Serengeti and Maasai Mara.",
			Price:         4150,
			Duration:      "10",
			Rating:        4.9,
			GroupSize:     6,
			Image:         "https://images.pexels.com/photos/33045/lion-wild-africa-african.jpg",
			Location:      "Tanzania & Kenya",
			Status:        model.TourStatusPublished,
			Availability:  model.AvailabilityLimited,
			LastUpdated:   "2025-03-01",
			TotalBookings: 9,
		},
		{
			ID:            5,
			Title:         "Amalfi Coast Private Tour",
			Description:   "Explore the stunning Amalfi Coast with private guides and luxury accommodations.",
			Price:         3750,
			Duration:      "8",
			Rating:        4.8,
			GroupSize:     4,
			Image:         "https://images.pexels.com/photos/1797277/pexels-photo-1797277.jpeg",
			Location:      "Italy",
			Status:        model.TourStatusDraft,
			Availability:  model.AvailabilityAvailable,
			LastUpdated:   "2025-03-12",
			TotalBookings: 0,
		},
		{
			ID:            6,
			Title:         "Northern Lights Expedition",
			Description:   "Chase the aurora borealis across Iceland with expert photography guides.",
			Price:         3450,
			Duration:      "7",
			Rating:        4.7,
			GroupSize:     8,
			Image:         "https://images.pexels.com/photos/1933316/pexels-photo-1933316.jpeg",
			Location:      "Iceland",
			Status:        model.TourStatusDraft,
			Availability:  model.AvailabilityAvailable,
			LastUpdated:   "2025-03-08",
			TotalBookings: 0,
		},
	}
}
