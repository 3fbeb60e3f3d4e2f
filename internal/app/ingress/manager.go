package ingress

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
)

// Manager owns the lifecycle of all enabled ingress backends and wires them
// to one shared callback.
type Manager struct {
	backends []contracts.IngressBackend
	log      *slog.Logger
}

func NewManager(log *slog.Logger, backends ...contracts.IngressBackend) *Manager {
	return &Manager{
		log:      log,
		backends: backends,
	}
}

// Start starts every backend with the shared callback. A backend that fails
// to start aborts startup; already-started backends are stopped again.
func (m *Manager) Start(ctx context.Context, onEvent contracts.EventHandler) error {
	for i, backend := range m.backends {
		if err := backend.Start(ctx, onEvent); err != nil {
			for _, started := range m.backends[:i] {
				_ = started.Stop(ctx)
			}
			return err
		}
	}
	m.log.Info("ingress manager - start - all backends started", "backends", len(m.backends))
	return nil
}

// Stop stops every backend, draining their in-flight callbacks, and joins
// the errors.
func (m *Manager) Stop(ctx context.Context) error {
	var err error
	for _, backend := range m.backends {
		err = errors.Join(err, backend.Stop(ctx))
	}
	m.log.Info("ingress manager - stop - all backends stopped", "backends", len(m.backends))
	return err
}
