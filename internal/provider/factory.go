package provider

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"invoicedesk/internal/domain/settings"
)

// Capability is the storage environment detected at startup: HostBacked or
// BrowserBacked.
type Capability interface {
	Backend() settings.Backend
}

// HostBacked means a host settings bridge is available.
type HostBacked struct {
	Bridge settings.HostBridge
}

func (HostBacked) Backend() settings.Backend { return settings.BackendHost }

// BrowserBacked means only local storage is available.
type BrowserBacked struct{}

func (BrowserBacked) Backend() settings.Backend { return settings.BackendBrowser }

// Detect resolves the capability for bridge. A nil bridge is BrowserBacked.
func Detect(bridge settings.HostBridge) Capability {
	if bridge == nil {
		return BrowserBacked{}
	}
	return HostBacked{Bridge: bridge}
}

// Factory builds the process's single settings provider.
type Factory struct {
	capability Capability
	storage    settings.LocalStorage
	hostOpts   HostOptions
	logger     *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	provider settings.Provider
}

// NewFactory creates a new provider factory
func NewFactory(capability Capability, storage settings.LocalStorage, hostOpts HostOptions, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if capability == nil {
		capability = BrowserBacked{}
	}
	return &Factory{
		capability: capability,
		storage:    storage,
		hostOpts:   hostOpts,
		logger:     logger,
	}
}

// Capability returns the detected capability
func (f *Factory) Capability() Capability {
	return f.capability
}

// Current returns the provider if one has been built, else nil.
func (f *Factory) Current() settings.Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.provider
}

// Provider returns the process provider, building and initializing it on the
// first call. Concurrent first calls share one build. A host-backed provider
// that fails to initialize is replaced by a browser-backed one.
func (f *Factory) Provider(ctx context.Context) (settings.Provider, error) {
	if p := f.Current(); p != nil {
		return p, nil
	}

	v, err, _ := f.group.Do("provider", func() (any, error) {
		if p := f.Current(); p != nil {
			return p, nil
		}
		p, err := f.build(ctx)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.provider = p
		f.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(settings.Provider), nil
}

func (f *Factory) build(ctx context.Context) (settings.Provider, error) {
	if host, ok := f.capability.(HostBacked); ok {
		p := NewHostProvider(host.Bridge, f.logger, f.hostOpts)
		err := p.Init(ctx)
		if err == nil {
			f.logger.Info("Using host settings provider")
			return p, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("Host settings provider unavailable, falling back to local storage", "error", err)
	}

	p := NewBrowserProvider(f.storage, f.logger)
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	f.logger.Info("Using browser settings provider")
	return p, nil
}
