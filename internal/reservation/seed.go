package reservation

import "github.com/FaizaanMd/cinema-booking/internal/model"

// DemoReservations returns the two sample reservations loaded when
// SEED_DEMO_DATA is enabled.
func DemoReservations() []model.Reservation {
	return []model.Reservation{
		{
			ID:            "res-001",
			MovieID:       "1",
			MovieTitle:    "Avatar: The Way of Water",
			MoviePoster:   "https://images.pexels.com/photos/7991579/pexels-photo-7991579.jpeg",
			Showtime:      "2:00 PM",
			Seats:         []string{"A5", "A6"},
			CustomerName:  "John Doe",
			CustomerEmail: "john.doe@example.com",
			CustomerPhone: "9876543210",
			TotalPrice:    500,
			BookingDate:   "2024-01-15",
			Status:        model.StatusConfirmed,
		},
		{
			ID:            "res-002",
			MovieID:       "2",
			MovieTitle:    "Top Gun: Maverick",
			MoviePoster:   "https://images.pexels.com/photos/8111357/pexels-photo-8111357.jpeg",
			Showtime:      "7:00 PM",
			Seats:         []string{"C3", "C4", "C5"},
			CustomerName:  "Jane Smith",
			CustomerEmail: "jane.smith@example.com",
			CustomerPhone: "9123456789",
			TotalPrice:    660,
			BookingDate:   "2024-01-14",
			Status:        model.StatusConfirmed,
		},
	}
}
