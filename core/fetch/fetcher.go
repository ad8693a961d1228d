package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"import-planner/core/types"
	"import-planner/internal/errors"
	"import-planner/internal/logging"
)

// Options bounds the retry behavior for transient remote failures
type Options struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// InitialDelay is the backoff before the first retry
	InitialDelay time.Duration

	// MaxDelay caps the doubled backoff
	MaxDelay time.Duration
}

// DefaultOptions returns sensible retry bounds
func DefaultOptions() Options {
	return Options{
		MaxRetries:   3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// Fetcher retrieves remote object attributes with bounded retries.
// Transient errors are retried with exponential backoff; every other
// error propagates immediately.
type Fetcher struct {
	client RemoteClient
	opts   Options
}

// NewFetcher creates a fetcher around an injected remote client
func NewFetcher(client RemoteClient, opts Options) *Fetcher {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultOptions().InitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultOptions().MaxDelay
	}
	return &Fetcher{client: client, opts: opts}
}

// Fetch retrieves the current attributes of one remote object
func (f *Fetcher) Fetch(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error) {
	delay := f.opts.InitialDelay

	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug("retrying remote fetch",
				zap.String("resource_type", resourceType),
				zap.String("id", id.String()),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, errors.Transient("fetch aborted", ctx.Err())
			case <-time.After(delay):
			}

			delay *= 2
			if delay > f.opts.MaxDelay {
				delay = f.opts.MaxDelay
			}
		}

		raw, err := f.client.GetByID(ctx, resourceType, id)
		if err == nil {
			return raw, nil
		}
		if !errors.IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, errors.Wrapf(errors.TypeTransient, lastErr,
		"remote fetch of %s %q failed after %d attempts", resourceType, id, f.opts.MaxRetries+1)
}
