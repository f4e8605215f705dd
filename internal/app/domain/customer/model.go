package customer

import "time"

// Customer represents a delivery recipient with a geographic location.
type Customer struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
