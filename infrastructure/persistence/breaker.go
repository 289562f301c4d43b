package persistence

import (
	"context"
	"errors"
	"time"

	"forever-us/application/ports"
	pkgerrors "forever-us/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once MinRequests is reached
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used for durable stores
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// BreakerStore guards a KeyValueStore with a circuit breaker so a failing
// backend is skipped quickly instead of being hit on every commit
type BreakerStore struct {
	next   ports.KeyValueStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

var _ ports.KeyValueStore = (*BreakerStore)(nil)

// NewBreakerStore wraps next with a breaker built from config
func NewBreakerStore(next ports.KeyValueStore, config BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Store circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A missing record or an oversize value is an answer, not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ports.ErrKeyNotFound) ||
				errors.Is(err, ports.ErrValueTooLarge)
		},
	})

	return &BreakerStore{next: next, cb: cb, logger: logger}
}

// Get reads through the breaker
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, b.translate("get", err)
	}
	value, _ := result.([]byte)
	return value, nil
}

// Put writes through the breaker
func (b *BreakerStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Put(ctx, key, value)
	})
	if err != nil {
		return b.translate("put", err)
	}
	return nil
}

// Close closes the wrapped store
func (b *BreakerStore) Close() error {
	return b.next.Close()
}

// State reports the breaker state, for readiness checks
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) translate(operation string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.logger.Debug("Store call rejected by breaker",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return pkgerrors.NewPersistenceUnavailableError(operation, err).
			WithCode(pkgerrors.CodeBreakerOpen)
	default:
		return err
	}
}
