package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingStore reruns whole transactions that failed with a transient storage error.
// A transaction is retried only after it was rolled back, never after a successful commit.
type RetryingStore struct {
	Store
	config RetryConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetryingStore(inner Store, config RetryConfig, logger *slog.Logger) *RetryingStore {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingStore{Store: inner, config: config, logger: logger, sleep: sleepCtx}
}

func (s *RetryingStore) WithinTx(ctx context.Context, fn TxFunc) error {
	delay := s.config.InitialDelay
	var err error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		err = s.Store.WithinTx(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTransient) {
			return err
		}
		if attempt == s.config.MaxAttempts {
			break
		}

		s.logger.Warn("transaction retry", "attempt", attempt, "delay", delay, "error", err)
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return err
		}
		delay = time.Duration(float64(delay) * s.config.BackoffFactor)
		if s.config.MaxDelay > 0 && delay > s.config.MaxDelay {
			delay = s.config.MaxDelay
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Store = (*RetryingStore)(nil)
