package repository_test

import (
	"time"

	"github.com/getmentor/profile-editor/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
}
