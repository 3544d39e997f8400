package ports

import (
	"context"
	"time"

	"github.com/samirrijal/metropass/internal/core/domain"
)

// ConfirmationPublisher hands completed purchases to the host side.
type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, flowID string, record domain.ConfirmationRecord) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Timer is a scheduled one-shot task.
type Timer interface {
	// Stop prevents the task from running. It reports false if the task
	// already ran or was stopped.
	Stop() bool
}

// Scheduler runs deferred tasks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TransactionIDGenerator produces transaction identifiers for completed purchases.
type TransactionIDGenerator interface {
	NewTransactionID() string
}
