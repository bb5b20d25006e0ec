package http

import (
	"context"
	"net/http"

	"github.com/go-carservice-api/internal/config"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/transport/http/handler"
	appmiddleware "github.com/go-carservice-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of the rate limiter's background sweep.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)
	customerOnly := appmiddleware.RequireRole(domain.RoleCustomer)

	// OTP issuance and verification are the endpoints worth hammering.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	customerAuthH := handler.NewAuthHandler(deps.Auth, domain.KindCustomer)
	adminAuthH := handler.NewAuthHandler(deps.Auth, domain.KindAdmin)
	customerH := handler.NewActorHandler(deps.Actors, domain.KindCustomer)
	adminH := handler.NewActorHandler(deps.Actors, domain.KindAdmin)
	serviceH := handler.NewServiceHandler(deps.Catalog)
	workshopH := handler.NewWorkshopHandler(deps.Workshops)
	carH := handler.NewCarHandler(deps.Cars)
	bookingH := handler.NewBookingHandler(deps.Bookings)
	reviewH := handler.NewReviewHandler(deps.Reviews)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/customers", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(sensitiveRL.Limit)
				r.Post("/register", customerAuthH.RequestRegistration)
				r.Post("/verify-register-otp", customerAuthH.VerifyRegistration)
				r.Post("/login", customerAuthH.RequestLogin)
				r.Post("/verify-login-otp", customerAuthH.VerifyLogin)
			})
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.With(adminOnly).Get("/", customerH.List)
				r.Get("/{id}", customerH.Get)
				r.Put("/{id}", customerH.Update)
				r.Delete("/{id}", customerH.Delete)
			})
		})

		r.Route("/admins", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(sensitiveRL.Limit)
				r.Post("/send-register-otp", adminAuthH.RequestRegistration)
				r.Post("/verify-register-otp", adminAuthH.VerifyRegistration)
				r.Post("/send-login-otp", adminAuthH.RequestLogin)
				r.Post("/verify-login-otp", adminAuthH.VerifyLogin)
			})
			r.With(authMw, adminOnly).Get("/{id}", adminH.Get)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", serviceH.List)
			r.Get("/getCategories", serviceH.Categories)
			r.Get("/category/{category}", serviceH.ListByCategory)
			r.Get("/{id}", serviceH.Get)
			r.Get("/{id}/charges", serviceH.Charges)
			r.Group(func(r chi.Router) {
				r.Use(authMw, adminOnly)
				r.Post("/", serviceH.Create)
				r.Put("/{id}", serviceH.Update)
				r.Delete("/{id}", serviceH.Delete)
				r.Put("/{id}/image", serviceH.UploadImage)
			})
		})

		r.Route("/workshops", func(r chi.Router) {
			r.Use(authMw, adminOnly)
			r.Post("/register", workshopH.Register)
			r.Get("/", workshopH.List)
			r.Get("/{id}", workshopH.Get)
			r.Put("/{id}", workshopH.Update)
		})

		r.Route("/cars", func(r chi.Router) {
			r.Use(authMw)
			r.Get("/{id}", carH.Get)
			r.Get("/customer/{customerId}", carH.ListByCustomer)
			r.Group(func(r chi.Router) {
				r.Use(customerOnly)
				r.Post("/", carH.Create)
				r.Put("/{id}", carH.Update)
				r.Delete("/{id}", carH.Delete)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(authMw)
			r.With(customerOnly).Post("/", bookingH.Create)
			r.Get("/customer/{customerId}", bookingH.ListByCustomer)
			r.With(adminOnly).Put("/{id}", bookingH.Update)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/service/{serviceId}", reviewH.ListByService)
			r.Get("/booking/{bookingId}", reviewH.GetByBooking)
			r.Group(func(r chi.Router) {
				r.Use(authMw, customerOnly)
				r.Post("/", reviewH.Create)
				r.Delete("/{id}", reviewH.Delete)
			})
		})
	})

	return r
}
