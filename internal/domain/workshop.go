package domain

import "time"

const (
	WorkshopAcquired   = "Acquired"
	WorkshopInProgress = "In-Progress"
	WorkshopRejected   = "Rejected"
)

type Workshop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateWorkshopRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	PhoneNumber string  `json:"phone_number" validate:"required,numeric,len=10"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Address     string  `json:"address" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=Acquired In-Progress Rejected"`
}

type UpdateWorkshopRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	PhoneNumber *string  `json:"phone_number" validate:"omitempty,numeric,len=10"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Address     *string  `json:"address" validate:"omitempty,min=1"`
	Status      *string  `json:"status" validate:"omitempty,oneof=Acquired In-Progress Rejected"`
	IsActive    *bool    `json:"is_active"`
}

func (r UpdateWorkshopRequest) Empty() bool {
	return r.Name == nil && r.PhoneNumber == nil && r.Longitude == nil && r.Latitude == nil &&
		r.Address == nil && r.Status == nil && r.IsActive == nil
}
