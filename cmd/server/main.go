package main // Entry point package

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/config"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/database"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/handler"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/payment"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/queue"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/router"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if cfg.Env == "dev" {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	store := repository.NewStore(db)
	gateway := payment.NewChapaClient(cfg.ChapaBaseURL, cfg.ChapaSecret, 0)

	svc := service.NewReconciler(store, gateway, service.Config{
		Currency:      cfg.Currency,
		ReturnURL:     cfg.ReturnURL,
		GracePeriod:   cfg.GracePeriod,
		SweepInterval: cfg.SweepInterval,
		FeePercent:    uint32(cfg.FeePercent),
	}, log)
	svc.Publish = func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
		return queue.PublishBookingConfirmed(ctx, log, ev)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go svc.RunExpirySweeper(ctx)
	go func() { _ = queue.StartBookingConsumer(log) }()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, router.Handlers{
		Rooms:     handler.NewRoomHandler(store.Rooms, store.Ledger),
		Bookings:  handler.NewBookingHandler(svc),
		Payments:  handler.NewPaymentHandler(svc, cfg.WebhookSecret, log),
		Reception: handler.NewReceptionHandler(svc, store.Rooms),
	}, cfg.JWTSecret, rdb)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Info("server stopped")
	}
}
