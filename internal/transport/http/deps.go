package http

import (
	"github.com/go-carservice-api/internal/application/actor"
	"github.com/go-carservice-api/internal/application/auth"
	"github.com/go-carservice-api/internal/application/booking"
	"github.com/go-carservice-api/internal/application/car"
	"github.com/go-carservice-api/internal/application/catalog"
	"github.com/go-carservice-api/internal/application/review"
	"github.com/go-carservice-api/internal/application/workshop"
	"github.com/go-carservice-api/internal/transport/http/middleware"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Auth      auth.Service
	Actors    actor.Service
	Catalog   catalog.Service
	Workshops workshop.Service
	Cars      car.Service
	Bookings  booking.Service
	Reviews   review.Service
	// Tokens validates bearer credentials on protected routes.
	Tokens middleware.TokenValidator
}
