package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/bootstrap"
	"github.com/Domenick1991/roombooking/internal/email"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/service/invoice"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := obs.NewLogger(cfg.Env).With("process", "worker")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	emailSender := email.NewSender(storage.Users, logger)
	var sink invoice.NotificationSink = emailSender

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, logger)
		defer producer.Close()
		kafkaNotifier := kafka.NewNotifier(producer)
		defer kafkaNotifier.Wait()
		sink = kafkaNotifier

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				event, err := kafka.DecodeNotification(msg)
				if err != nil {
					return err
				}
				return emailSender.Send(ctx, event)
			}); err != nil {
				logger.Error("consumer stopped", "error", err)
				stop()
			}
		}()
	}

	invoiceService := invoice.NewInvoiceService(storage.Store, storage.Catalog, storage.Users, cfg.Booking.InvoiceGrace(),
		invoice.WithNotifier(sink),
		invoice.WithLogger(logger),
	)

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.OverdueSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	logger.Info("worker started", "overdue_sweep_minutes", cfg.Worker.OverdueSweepMinutes)
	for {
		select {
		case <-sweepTicker.C:
			if _, err := invoiceService.RemindOverdue(ctx); err != nil {
				logger.Error("overdue sweep failed", "error", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
