package media

import "github.com/hitoshi/wanderluxe/internal/model"

// SeedVideos は起動時の動画一覧を返す。
func SeedVideos() []model.Video {
	return []model.Video{
		{
			ID:          1,
			Title:       "The Wonders of Bali",
			Description: "Explore the mystical temples, lush rice terraces, and pristine beaches of Bali.",
			Thumbnail:   "https://images.pexels.com/photos/5747135/pexels-photo-5747135.jpeg",
			VideoURL:    "https://player.vimeo.com/video/253989945",
			Location:    "Bali, Indonesia",
			Duration:    "2:45",
			Featured:    true,
			Published:   true,
			UploadDate:  "2025-02-15",
		},
		{
			ID:          2,
			Title:       "Santorini Sunset Escape",
			Description: "Experience the world-famous sunsets and whitewashed villages of Santorini.",
			Thumbnail:   "https://images.pexels.com/photos/1010657/pexels-photo-1010657.jpeg",
			VideoURL:    "https://player.vimeo.com/video/289289202",
			Location:    "Santorini, Greece",
			Duration:    "3:12",
			Featured:    true,
			Published:   true,
			UploadDate:  "2025-02-28",
		},
		{
			ID:          3,
			Title:       "Safari Adventures in Tanzania",
			Description: "Witness the incredible wildlife and breathtaking landscapes of the Serengeti.",
			Thumbnail:   "https://images.pexels.com/photos/33045/lion-wild-africa-african.jpg",
			VideoURL:    "https://player.vimeo.com/video/214260744",
			Location:    "Serengeti, Tanzania",
			Duration:    "4:05",
			Featured:    false,
			Published:   true,
			UploadDate:  "2025-03-10",
		},
		{
			ID:          4,
			Title:       "The Northern Lights Experience",
			Description: "Witness the magical aurora borealis dancing across the Arctic sky.",
			Thumbnail:   "https://images.pexels.com/photos/2113554/pexels-photo-2113554.jpeg",
			VideoURL:    "https://player.vimeo.com/video/174512397",
			Location:    "Iceland",
			Duration:    "3:35",
			Featured:    false,
			Published:   true,
			UploadDate:  "2025-03-05",
		},
		{
			ID:          5,
			Title:       "Kyoto: City of Temples",
			Description: "Discover the ancient temples and traditional culture of Kyoto.",
			Thumbnail:   "https://images.pexels.com/photos/402028/pexels-photo-402028.jpeg",
			VideoURL:    "https://player.vimeo.com/video/305164453",
			Location:    "Kyoto, Japan",
			Duration:    "2:50",
			Featured:    false,
			Published:   false,
			UploadDate:  "2025-03-15",
		},
	}
}
