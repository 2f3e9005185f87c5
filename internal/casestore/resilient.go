package casestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/metrics"
)

// ErrStoreUnavailable is returned while the circuit breaker is open.
var ErrStoreUnavailable = errors.New("case store unavailable (circuit breaker open)")

// BreakerConfig represents circuit breaker configuration
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// ResilientStore wraps a Store with a circuit breaker and query timing.
// Not-found results and rejected archives count as successes.
type ResilientStore struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
}

// NewResilientStore creates a new resilient store
func NewResilientStore(store Store, config BreakerConfig, logger *logrus.Logger) *ResilientStore {
	if config.MaxRequests == 0 {
		config.MaxRequests = 3
	}
	if config.Interval == 0 {
		config.Interval = 10 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "CaseStore",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, ErrInvalidArchive)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &ResilientStore{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// State returns the current breaker state
func (r *ResilientStore) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientStore) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	defer metrics.ObserveQuery(operation, time.Now())

	result, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", operation, ErrStoreUnavailable)
	}
	return result, err
}

// Save upserts a case
func (r *ResilientStore) Save(ctx context.Context, rec *CaseRecord) error {
	_, err := r.execute("save", func() (interface{}, error) {
		return nil, r.store.Save(ctx, rec)
	})
	return err
}

// Get retrieves a case by ID
func (r *ResilientStore) Get(ctx context.Context, id string) (*CaseRecord, error) {
	result, err := r.execute("get", func() (interface{}, error) {
		return r.store.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CaseRecord), nil
}

// List returns cases with pagination, newest first
func (r *ResilientStore) List(ctx context.Context, limit, offset int) ([]*CaseRecord, error) {
	result, err := r.execute("list", func() (interface{}, error) {
		return r.store.List(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*CaseRecord), nil
}

// Count returns the total number of cases
func (r *ResilientStore) Count(ctx context.Context) (int64, error) {
	result, err := r.execute("count", func() (interface{}, error) {
		return r.store.Count(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// Delete removes a case by ID
func (r *ResilientStore) Delete(ctx context.Context, id string) error {
	_, err := r.execute("delete", func() (interface{}, error) {
		return nil, r.store.Delete(ctx, id)
	})
	return err
}

// ExportJSON exports all cases to a JSON writer
func (r *ResilientStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	_, err := r.execute("export", func() (interface{}, error) {
		return nil, r.store.ExportJSON(ctx, writer)
	})
	return err
}

// ImportJSON imports cases from a JSON reader
func (r *ResilientStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	var imported, skipped int
	_, err := r.execute("import", func() (interface{}, error) {
		var err error
		imported, skipped, err = r.store.ImportJSON(ctx, reader)
		return nil, err
	})
	return imported, skipped, err
}

// Close closes the wrapped store
func (r *ResilientStore) Close() error {
	return r.store.Close()
}
