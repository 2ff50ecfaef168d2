package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/config"
	"github.com/atelio/atelio-api/internal/domain/booking"
	"github.com/atelio/atelio-api/internal/domain/notification"
	"github.com/atelio/atelio-api/internal/domain/payment"
	"github.com/atelio/atelio-api/internal/domain/slot"
	"github.com/atelio/atelio-api/internal/domain/workshop"
	"github.com/atelio/atelio-api/internal/middleware"
	"github.com/atelio/atelio-api/internal/pkg/database"
	"github.com/atelio/atelio-api/internal/pkg/jwt"
	pkgresponse "github.com/atelio/atelio-api/internal/pkg/response"
	"github.com/atelio/atelio-api/internal/pkg/stripegw"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Atelio API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	workshopRepo := workshop.NewRepository(db)
	slotRepo := slot.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// ---------- Services ----------
	gateway := stripegw.New(cfg.StripeSecretKey)
	dispatcher := notification.NewDispatcher(redis, cfg.NotificationChannel)

	workshopService := workshop.NewService(workshopRepo)
	slotService := slot.NewService(slotRepo, redis)
	paymentService := payment.NewService(paymentRepo, gateway, cfg.GatewayTimeout, cfg.GatewayMaxRetries)
	bookingService := booking.NewService(bookingRepo, slotService, paymentService, dispatcher, cfg.Currency)

	// ---------- Handlers ----------
	workshopHandler := workshop.NewHandler(workshopService)
	slotHandler := slot.NewHandler(slotService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/workshops", workshopHandler.PublicRoutes())
		r.Mount("/slots", slotHandler.Routes(authMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/workshops", workshopHandler.AdminRoutes(authMiddleware))
		r.Mount("/slots", slotHandler.AdminRoutes(authMiddleware))
		r.Mount("/bookings", bookingHandler.AdminRoutes(authMiddleware))
		r.Mount("/payments", paymentHandler.AdminRoutes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
