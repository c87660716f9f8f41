package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectSlotQuery = `SELECT value FROM profile_slots WHERE key = $1`
	upsertSlotQuery = `INSERT INTO profile_slots (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// Querier is the subset of pgxpool.Pool used by the slot client
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// Client stores profile slots in the profile_slots table
type Client struct {
	db Querier
}

// NewClient creates a slot client on top of an already connected pool
func NewClient(db Querier) *Client {
	logger.Info("PostgreSQL slot client initialized")
	return &Client{db: db}
}

// Name identifies the backend
func (c *Client) Name() string {
	return "postgres"
}

// Get returns the value stored under key
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	operation := "select"

	var value string
	err := c.db.QueryRow(ctx, selectSlotQuery, key).Scan(&value)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return "", false, nil
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("failed to query profile slot: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return value, true, nil
}

// Set upserts the value stored under key
func (c *Client) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	operation := "upsert"

	_, err := c.db.Exec(ctx, upsertSlotQuery, key, value)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to upsert profile slot: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("key", key))
	return nil
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.ObserveStore("postgres", operation, status, duration)
}
