package repository

import (
	"context"

	"github.com/getmentor/profile-editor/pkg/retry"
)

// RetryingSlot retries reads and writes of a remote slot with backoff
type RetryingSlot struct {
	next   Slot
	config retry.Config
}

// NewRetryingSlot wraps next with the given retry policy
func NewRetryingSlot(next Slot, config retry.Config) *RetryingSlot {
	return &RetryingSlot{next: next, config: config}
}

// Name reports the wrapped backend name
func (s *RetryingSlot) Name() string {
	return s.next.Name()
}

type slotValue struct {
	value string
	found bool
}

// Get reads through the wrapped slot
func (s *RetryingSlot) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := retry.DoWithResult(ctx, s.config, s.next.Name()+".get", func() (slotValue, error) {
		value, found, err := s.next.Get(ctx, key)
		return slotValue{value: value, found: found}, err
	})
	if err != nil {
		return "", false, err
	}
	return res.value, res.found, nil
}

// Set writes through the wrapped slot
func (s *RetryingSlot) Set(ctx context.Context, key, value string) error {
	return retry.Do(ctx, s.config, s.next.Name()+".set", func() error {
		return s.next.Set(ctx, key, value)
	})
}
