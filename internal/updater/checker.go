package updater

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Checker runs one update check whose failures never reach the caller.
type Checker struct {
	client      *Client
	retry       RetryConfig
	logger      zerolog.Logger
	onAvailable func(*UpdateResult)
}

// NewChecker creates a checker. onAvailable may be nil.
func NewChecker(client *Client, logger zerolog.Logger, onAvailable func(*UpdateResult)) *Checker {
	return &Checker{
		client:      client,
		retry:       DefaultRetryConfig(),
		logger:      logger,
		onAvailable: onAvailable,
	}
}

// WithRetryConfig overrides the backoff.
func (c *Checker) WithRetryConfig(cfg RetryConfig) *Checker {
	c.retry = cfg
	return c
}

// Check performs the update check. Errors and panics are logged and
// swallowed; the result is nil when the check did not complete.
func (c *Checker) Check(ctx context.Context) (result *UpdateResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("panic", fmt.Sprint(r)).Msg("update check panicked")
			result = nil
		}
	}()

	err := WithRetry(ctx, "update check", c.retry, func() error {
		var err error
		result, err = c.client.CheckForUpdate(ctx)
		return err
	}, c.logger)
	if err != nil {
		c.logger.Warn().Err(err).Msg("update check failed")
		return nil
	}

	if !result.Available {
		c.logger.Info().Str("version", result.CurrentVersion).Msg("up to date")
		return result
	}

	c.logger.Info().
		Str("current", result.CurrentVersion).
		Str("latest", result.LatestVersion).
		Str("url", result.ReleaseURL).
		Msg("update available")
	if c.onAvailable != nil {
		c.onAvailable(result)
	}
	return result
}
