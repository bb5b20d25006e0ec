package domain

import "time"

const (
	ServiceAvailable   = "Available"
	ServiceUnavailable = "Unavailable"
)

// ConvenienceFee is added to the service price on every booking.
const ConvenienceFee = 100.0

type Service struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	Features  []string  `json:"features"`
	Details   []string  `json:"details"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateServiceRequest struct {
	Category string   `json:"category" validate:"required,max=50"`
	Name     string   `json:"name" validate:"required,max=100"`
	Price    float64  `json:"price" validate:"gt=0"`
	Status   string   `json:"status" validate:"omitempty,oneof=Available Unavailable"`
	Features []string `json:"features"`
	Details  []string `json:"details"`
}

// UpdateServiceRequest lists every mutable column; nil fields are left unchanged.
type UpdateServiceRequest struct {
	Category *string   `json:"category" validate:"omitempty,min=1,max=50"`
	Name     *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Price    *float64  `json:"price" validate:"omitempty,gt=0"`
	Status   *string   `json:"status" validate:"omitempty,oneof=Available Unavailable"`
	Features *[]string `json:"features"`
	Details  *[]string `json:"details"`
}

func (r UpdateServiceRequest) Empty() bool {
	return r.Category == nil && r.Name == nil && r.Price == nil &&
		r.Status == nil && r.Features == nil && r.Details == nil
}

// Charges is the price breakdown shown before a booking is placed.
type Charges struct {
	BasePrice      float64 `json:"base_price"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Total          float64 `json:"total"`
}
