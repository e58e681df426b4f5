// Package probe detects whether another launcher instance already serves on
// the well-known local port.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/zeppplayer/zeppplayer/internal/buildinfo"
)

// ResourcePath is a static resource every running instance serves.
const ResourcePath = "/app/icon.png"

// DefaultTimeout bounds the probe so a firewalled or half-open port cannot
// stall startup.
const DefaultTimeout = 2 * time.Second

// Prober checks liveness of a prior instance.
type Prober struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// New creates a prober for the instance listening on port.
func New(port int, timeout time.Duration, logger zerolog.Logger) *Prober {
	return NewForURL(fmt.Sprintf("http://127.0.0.1:%d%s", port, ResourcePath), timeout, logger)
}

// NewForURL creates a prober against an explicit resource URL.
func NewForURL(url string, timeout time.Duration, logger zerolog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Probe reports whether an instance answered the resource request with 200.
// Any failure counts as "not running".
func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Debug().Err(err).Msg("probe request could not be built")
		return false
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", p.url).Msg("no running instance")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug().Int("status", resp.StatusCode).Str("url", p.url).Msg("port answered but not as an instance")
		return false
	}
	return true
}
