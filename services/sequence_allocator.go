package services

import (
	"context"
	"errors"
	"time"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/metrics"
	"Huddle/models"
	"Huddle/repositories"
)

const (
	DefaultSequenceAttempts = 3
	DefaultSequenceBackoff  = 15 * time.Millisecond
)

// SideEffect runs inside the allocation transaction after the insert. An
// error rolls back the message too.
type SideEffect func(ctx context.Context, tx repositories.Store, msg *models.Message) error

// SequenceAllocator assigns per-container sequence numbers. The unique
// index on (container, sequence) is the only arbiter between concurrent
// writers; a losing writer re-reads MAX and tries again.
type SequenceAllocator struct {
	Store       repositories.Store
	MaxAttempts int
	Backoff     time.Duration

	wait func(ctx context.Context, d time.Duration) error
}

func NewSequenceAllocator(store repositories.Store, maxAttempts int, backoff time.Duration) *SequenceAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSequenceAttempts
	}
	if backoff < 0 {
		backoff = DefaultSequenceBackoff
	}
	return &SequenceAllocator{
		Store:       store,
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		wait:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AllocateAndInsert persists draft with the next free sequence of its
// container. draft itself is not modified.
func (a *SequenceAllocator) AllocateAndInsert(ctx context.Context, draft *models.Message, effects ...SideEffect) (*models.Message, error) {
	var lastErr error
	delay := a.Backoff

	for attempt := 1; attempt <= a.MaxAttempts; attempt++ {
		msg := *draft
		msg.Sequence = 0

		err := a.Store.WithinTransaction(ctx, func(tx repositories.Store) error {
			if err := tx.Messages().InsertWithNextSequence(ctx, &msg); err != nil {
				return err
			}
			for _, effect := range effects {
				if err := effect(ctx, tx, &msg); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return &msg, nil
		}

		if !errors.Is(err, repositories.ErrSequenceConflict) {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			logger.Error("message insert failed", "container", draft.Container().String(), "error", err)
			return nil, apperrors.Internal(err)
		}

		metrics.SequenceConflicts.Inc()
		lastErr = err
		logger.Debug("sequence conflict", "container", draft.Container().String(), "attempt", attempt)

		if attempt < a.MaxAttempts {
			if werr := a.wait(ctx, delay); werr != nil {
				return nil, apperrors.Internal(werr)
			}
			delay *= 2
		}
	}

	metrics.SequenceExhausted.Inc()
	logger.Warn("sequence retries exhausted", "container", draft.Container().String(), "attempts", a.MaxAttempts)
	return nil, apperrors.ErrSequenceUnavailable(lastErr)
}
