package menu

type Item struct {
	ID              int64   `json:"id"`
	StallID         int64   `json:"stall_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	ImageURL        string  `json:"image_url"`
	IsAvailable     bool    `json:"is_available"`
	IsVegetarian    bool    `json:"is_vegetarian"`
	IsHalal         bool    `json:"is_halal"`
	PreparationTime int     `json:"preparation_time"`
}
