package launcher

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// Headless stands in for the tray on machines without a desktop session.
// Run blocks until SIGINT, SIGTERM or Quit.
type Headless struct {
	logger zerolog.Logger
	quit   chan struct{}
	once   sync.Once
}

// NewHeadless creates a headless tray replacement.
func NewHeadless(logger zerolog.Logger) *Headless {
	return &Headless{logger: logger, quit: make(chan struct{})}
}

func (h *Headless) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	case <-h.quit:
	}
	return nil
}

func (h *Headless) Quit() {
	h.once.Do(func() { close(h.quit) })
}

func (h *Headless) SetTooltip(tooltip string) {
	h.logger.Info().Msg(tooltip)
}
