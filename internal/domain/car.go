package domain

import "time"

type Car struct {
	ID                 string    `json:"id"`
	CustomerID         string    `json:"customer_id"`
	RegistrationNumber string    `json:"registration_number"`
	Brand              string    `json:"brand"`
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CreateCarRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required,alphanum,max=20"`
	Brand              string `json:"brand" validate:"required,max=50"`
	Model              string `json:"model" validate:"required,max=50"`
}

type UpdateCarRequest struct {
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,alphanum,max=20"`
	Brand              *string `json:"brand" validate:"omitempty,min=1,max=50"`
	Model              *string `json:"model" validate:"omitempty,min=1,max=50"`
}

func (r UpdateCarRequest) Empty() bool {
	return r.RegistrationNumber == nil && r.Brand == nil && r.Model == nil
}
