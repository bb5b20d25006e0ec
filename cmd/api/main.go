package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-carservice-api/internal/application/actor"
	"github.com/go-carservice-api/internal/application/auth"
	"github.com/go-carservice-api/internal/application/booking"
	"github.com/go-carservice-api/internal/application/car"
	"github.com/go-carservice-api/internal/application/catalog"
	"github.com/go-carservice-api/internal/application/otp"
	"github.com/go-carservice-api/internal/application/review"
	"github.com/go-carservice-api/internal/application/workshop"
	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/config"
	"github.com/go-carservice-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-carservice-api/internal/infrastructure/jwt"
	natsinfra "github.com/go-carservice-api/internal/infrastructure/nats"
	"github.com/go-carservice-api/internal/infrastructure/postgres"
	redisstore "github.com/go-carservice-api/internal/infrastructure/redis"
	s3infra "github.com/go-carservice-api/internal/infrastructure/s3"
	"github.com/go-carservice-api/internal/infrastructure/smslog"
	"github.com/go-carservice-api/internal/infrastructure/sns"
	transporthttp "github.com/go-carservice-api/internal/transport/http"
	"github.com/joho/godotenv"
)

// ephemeralStore is what both the OTP layer and the cache need from the
// short-lived key/value backend.
type ephemeralStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	ephemeral, closeEphemeral, err := newEphemeralStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEphemeral()

	sender, closeSender, err := newSMSSender(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSender()

	tokens, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	images := s3infra.NewStore(s3Client, cfg)

	c := cache.New(ephemeral, logger)
	ttl := cache.TTLs{Entity: cfg.Cache.EntityTTL, List: cfg.Cache.ListTTL}

	otpManager := otp.NewManager(otp.ManagerDeps{
		Store:  ephemeral,
		Sender: sender,
		Policy: otp.Policy{
			CodeTTL:             cfg.OTP.TTL,
			Window:              cfg.OTP.Window,
			MaxRequestsAdmin:    cfg.OTP.MaxRequestsAdmin,
			MaxRequestsCustomer: cfg.OTP.MaxRequestsCustomer,
		},
		FixedCode: cfg.OTP.FixedCode,
		Logger:    logger,
	})
	pending := otp.NewPendingHolder(ephemeral, cfg.PendingTTL)

	admins := postgres.NewAdminRepo(db)
	customers := postgres.NewCustomerRepo(db)
	servicesRepo := postgres.NewServiceRepo(db)
	workshopsRepo := postgres.NewWorkshopRepo(db)
	carsRepo := postgres.NewCarRepo(db)
	bookingsRepo := postgres.NewBookingRepo(db)
	reviewsRepo := postgres.NewReviewRepo(db)

	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		Repo:     servicesRepo,
		Bookings: bookingsRepo,
		Images:   images,
		Cache:    c,
		TTL:      ttl,
		Logger:   logger,
	})

	deps := &transporthttp.Deps{
		Auth: auth.NewService(auth.ServiceDeps{
			Admins:          admins,
			Customers:       customers,
			OTP:             otpManager,
			Pending:         pending,
			Issuer:          tokens,
			AdminSecretHash: cfg.AdminSecretHash,
			Logger:          logger,
		}),
		Actors: actor.NewService(actor.ServiceDeps{
			Admins:    admins,
			Customers: customers,
			Cache:     c,
		}),
		Catalog: catalogSvc,
		Workshops: workshop.NewService(workshop.ServiceDeps{
			Repo:     workshopsRepo,
			Bookings: bookingsRepo,
			Cache:    c,
			TTL:      ttl,
		}),
		Cars: car.NewService(car.ServiceDeps{
			Repo:  carsRepo,
			Cache: c,
			TTL:   ttl,
		}),
		Bookings: booking.NewService(booking.ServiceDeps{
			Repo:     bookingsRepo,
			Cars:     carsRepo,
			Services: catalogSvc,
			Cache:    c,
			TTL:      ttl,
			Logger:   logger,
		}),
		Reviews: review.NewService(review.ServiceDeps{
			Repo:     reviewsRepo,
			Bookings: bookingsRepo,
			Cache:    c,
			TTL:      ttl,
		}),
		Tokens: tokens,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv,
			"ephemeral", cfg.EphemeralBackend, "sms", cfg.SMSProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newEphemeralStore(ctx context.Context, cfg *config.Config) (ephemeralStore, func(), error) {
	if cfg.EphemeralBackend == config.EphemeralDynamo {
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewEphemeralStore(client, cfg.DynamoTables.Ephemeral), func() {}, nil
	}
	rdb, err := redisstore.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return redisstore.NewStore(rdb), func() { _ = rdb.Close() }, nil
}

func newSMSSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (otp.Sender, func(), error) {
	switch cfg.SMSProvider {
	case config.SMSProviderNATS:
		s, err := natsinfra.NewSender(cfg.NATSURL, cfg.NATSSMSSubject, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.SMSProviderLog:
		return smslog.NewSender(logger), func() {}, nil
	default:
		s, err := sns.NewSender(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return newLoggerTo(os.Stdout, lvl)
}

func newLoggerTo(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
