package domain

import "time"

const (
	BookingPending    = "Pending"
	BookingInProgress = "In-Progress"
	BookingCompleted  = "Completed"
	BookingCancelled  = "Cancelled"
)

type Booking struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CarID         string    `json:"car_id"`
	WorkshopID    *string   `json:"workshop_id"`
	ServiceID     string    `json:"service_id"`
	Status        string    `json:"status"`
	BookingDate   time.Time `json:"booking_date"`
	PickupAddress string    `json:"pickup_address"`
	PickupTiming  string    `json:"pickup_timing"`
	Longitude     float64   `json:"longitude"`
	Latitude      float64   `json:"latitude"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookingDetail is a booking joined with the customer, car, workshop and
// service it references. It is cached as one document per customer.
type BookingDetail struct {
	Booking
	CustomerName       string  `json:"customer_name"`
	CustomerPhone      string  `json:"customer_phone"`
	RegistrationNumber string  `json:"registration_number"`
	CarBrand           string  `json:"car_brand"`
	CarModel           string  `json:"car_model"`
	WorkshopName       *string `json:"workshop_name"`
	WorkshopAddress    *string `json:"workshop_address"`
	ServiceName        string  `json:"service_name"`
	ServiceCategory    string  `json:"service_category"`
	ServicePrice       float64 `json:"service_price"`
}

type CreateBookingRequest struct {
	CarID         string  `json:"car_id" validate:"required"`
	ServiceID     string  `json:"service_id" validate:"required"`
	BookingDate   string  `json:"booking_date" validate:"required,datetime=2006-01-02"`
	PickupAddress string  `json:"pickup_address" validate:"required"`
	PickupTiming  string  `json:"pickup_timing" validate:"required,max=50"`
	Longitude     float64 `json:"longitude" validate:"longitude"`
	Latitude      float64 `json:"latitude" validate:"latitude"`
}

// UpdateBookingRequest is the admin-side partial update.
type UpdateBookingRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=Pending In-Progress Completed Cancelled"`
	WorkshopID *string `json:"workshop_id" validate:"omitempty,min=1"`
}

func (r UpdateBookingRequest) Empty() bool { return r.Status == nil && r.WorkshopID == nil }
