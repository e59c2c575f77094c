package stall

type Stall struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	CuisineType string   `json:"cuisine_type"`
	ImageURL    string   `json:"image_url"`
	IsOpen      bool     `json:"is_open"`
	Rating      float64  `json:"rating"`
	AvgPrepTime int      `json:"avg_prep_time"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	OwnerID     *int64   `json:"owner_id,omitempty"`
}

// NearbyStall is a stall annotated with its distance from the caller.
// The distance is recomputed server-side; client-side values are never
// trusted for anything beyond display ordering.
type NearbyStall struct {
	Stall
	DistanceKm     float64 `json:"distance_km"`
	WalkingMinutes int     `json:"walking_time_minutes"`
}
