package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"github.com/getmentor/profile-editor/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultProfileKey is the slot key the profile lives under
const DefaultProfileKey = "profile"

// ProfileRepository stores the single profile record in a slot under a fixed key
type ProfileRepository struct {
	slot Slot
	key  string
}

// NewProfileRepository creates a profile repository; an empty key falls back to DefaultProfileKey
func NewProfileRepository(slot Slot, key string) *ProfileRepository {
	if key == "" {
		key = DefaultProfileKey
	}
	return &ProfileRepository{
		slot: slot,
		key:  key,
	}
}

// Key returns the fixed slot key
func (r *ProfileRepository) Key() string {
	return r.key
}

// Load returns the saved profile. A missing or malformed value is reported
// as absent (false, nil); only backend failures return an error.
func (r *ProfileRepository) Load(ctx context.Context) (*models.Profile, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ProfileRepository.Load")
	defer span.End()
	span.SetAttributes(attribute.String("store.backend", r.slot.Name()))

	start := time.Now()
	operation := "load"

	raw, found, err := r.slot.Get(ctx, r.key)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.ObserveStore(r.slot.Name(), operation, "error", duration)
		logger.LogAPICall(r.slot.Name(), operation, "error", duration, zap.Error(err), zap.String("key", r.key))
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to read profile slot: %w", err)
	}

	if !found {
		metrics.ObserveStore(r.slot.Name(), operation, "not_found", duration)
		logger.Info("No saved profile found", zap.String("backend", r.slot.Name()), zap.String("key", r.key))
		return nil, false, nil
	}

	profile, err := DecodeProfile(raw)
	if err != nil {
		metrics.ObserveStore(r.slot.Name(), operation, "corrupt", duration)
		metrics.StoreCorruptLoads.Inc()
		logger.Warn("Ignoring malformed saved profile",
			zap.String("backend", r.slot.Name()),
			zap.String("key", r.key),
			zap.Int("size_bytes", len(raw)),
			zap.Error(err))
		return nil, false, nil
	}

	metrics.ObserveStore(r.slot.Name(), operation, "success", duration)
	logger.LogAPICall(r.slot.Name(), operation, "success", duration, zap.String("key", r.key))
	return profile, true, nil
}

// Save serializes the whole profile and overwrites the slot
func (r *ProfileRepository) Save(ctx context.Context, profile *models.Profile) error {
	ctx, span := tracing.StartSpan(ctx, "ProfileRepository.Save")
	defer span.End()
	span.SetAttributes(attribute.String("store.backend", r.slot.Name()))

	start := time.Now()
	operation := "save"

	raw, err := EncodeProfile(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	err = r.slot.Set(ctx, r.key, raw)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.ObserveStore(r.slot.Name(), operation, "error", duration)
		logger.LogAPICall(r.slot.Name(), operation, "error", duration, zap.Error(err), zap.String("key", r.key))
		span.RecordError(err)
		return fmt.Errorf("failed to write profile slot: %w", err)
	}

	metrics.ObserveStore(r.slot.Name(), operation, "success", duration)
	logger.LogAPICall(r.slot.Name(), operation, "success", duration,
		zap.String("key", r.key),
		zap.Int("size_bytes", len(raw)))
	return nil
}
