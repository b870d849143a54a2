package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/roombooking/api"
	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/bootstrap"
	"github.com/Domenick1991/roombooking/internal/cache"
	"github.com/Domenick1991/roombooking/internal/email"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/Domenick1991/roombooking/internal/service/events"
	"github.com/Domenick1991/roombooking/internal/service/invoice"
	"github.com/Domenick1991/roombooking/internal/service/matching"
	"github.com/Domenick1991/roombooking/internal/service/occupancy"
	"github.com/Domenick1991/roombooking/internal/service/rooms"
)

type notificationSink interface {
	Notify(ctx context.Context, userID int64, subject, body string) error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, _ := cfg.Booking.Location()
	workdayStart, workdayEnd, _ := cfg.Analytics.Workday()

	storage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.RoomsCacheDuration())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, rooms are read from storage", "error", err)
	} else if err := redisCache.InvalidateRooms(ctx); err != nil {
		logger.Warn("reset room cache", "error", err)
	}
	catalog := rooms.NewRoomService(storage.Catalog, redisCache, logger)

	var notifier notificationSink = email.NewSender(storage.Users, logger)
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unavailable, notifications may be lost", "error", err)
		}
		kafkaNotifier := kafka.NewNotifier(producer)
		defer kafkaNotifier.Wait()
		notifier = kafkaNotifier
	}

	invoiceService := invoice.NewInvoiceService(storage.Store, catalog, storage.Users, cfg.Booking.InvoiceGrace(),
		invoice.WithAmountPolicy(invoice.PerBillingUnit(cfg.Booking.BillingUnit())),
		invoice.WithNotifier(notifier),
		invoice.WithLogger(logger),
	)
	bookingService := booking.NewBookingService(storage.Store, catalog, storage.Users, invoiceService,
		booking.WithNotifier(notifier),
		booking.WithLocation(loc),
		booking.WithPageSizes(cfg.Booking.DefaultPageSize, cfg.Booking.MaxPageSize),
		booking.WithLogger(logger),
	)
	matcher := matching.NewRoomMatcher(catalog, storage.Store.Bookings(), loc, logger)
	analyzer := occupancy.NewOccupancyAnalyzer(catalog, storage.Store.Bookings(), occupancy.Settings{
		WorkdayStart:        workdayStart,
		WorkdayEnd:          workdayEnd,
		MovingAverageWindow: cfg.Analytics.MovingAverageWindow,
		MaxDaysAhead:        cfg.Analytics.MaxDaysAhead,
		Location:            loc,
	}, logger)
	eventService := events.NewEventService(storage.Store.Events(), storage.Store.Bookings(), catalog, storage.Users, time.Now)

	handlers := bootstrap.Handlers{
		Bookings: api.NewBookingHandler(bookingService, loc),
		Invoices: api.NewInvoiceHandler(invoiceService),
		Rooms:    api.NewRoomHandler(catalog, matcher, analyzer, loc),
		Events:   api.NewEventHandler(eventService),
	}

	if err := bootstrap.Run(ctx, cfg, handlers, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
