package trigger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/getmentor/profile-editor/pkg/httpclient"
	"github.com/getmentor/profile-editor/pkg/logger"
	"go.uber.org/zap"
)

const asyncTimeout = 15 * time.Second

// Call posts payload as JSON to triggerURL and checks for a 2xx status
func Call(ctx context.Context, triggerURL string, payload any, client httpclient.Client) error {
	logger.Info("Calling trigger URL", zap.String("url", triggerURL))

	resp, err := httpclient.PostJSON(ctx, client, triggerURL, payload)
	if err != nil {
		logger.Error("Failed to call trigger URL", zap.Error(err), zap.String("url", triggerURL))
		return fmt.Errorf("failed to call trigger: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Trigger URL returned non-success status",
			zap.String("url", triggerURL),
			zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("trigger returned status %d", resp.StatusCode)
	}

	logger.Info("Trigger URL called successfully",
		zap.String("url", triggerURL),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

// CallAsync runs Call in a goroutine detached from the caller's cancellation.
// done, when not nil, receives the outcome. An empty URL is a no-op.
func CallAsync(ctx context.Context, triggerURL string, payload any, client httpclient.Client, done func(error)) {
	if triggerURL == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, asyncTimeout)
		defer cancel()

		err := Call(callCtx, triggerURL, payload, client)
		if done != nil {
			done(err)
		}
	}()
}
