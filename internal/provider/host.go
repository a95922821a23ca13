package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

// Host bridge readiness defaults.
const (
	DefaultReadyTimeout  = 5 * time.Second
	DefaultReadyInterval = 100 * time.Millisecond
)

// HostOptions tunes the host bridge readiness wait.
type HostOptions struct {
	ReadyTimeout  time.Duration
	ReadyInterval time.Duration
}

func (o HostOptions) withDefaults() HostOptions {
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.ReadyInterval <= 0 {
		o.ReadyInterval = DefaultReadyInterval
	}
	return o
}

// HostProvider persists settings through the host bridge.
type HostProvider struct {
	*notifier

	bridge settings.HostBridge
	logger *slog.Logger
	opts   HostOptions

	initMu      sync.Mutex
	initialized bool
	initErr     error
}

// NewHostProvider creates a provider over bridge. Call Init (or any other
// method) to wait for the bridge and seed defaults.
func NewHostProvider(bridge settings.HostBridge, logger *slog.Logger, opts HostOptions) *HostProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostProvider{
		notifier: newNotifier(logger),
		bridge:   bridge,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

func (p *HostProvider) Kind() settings.Backend {
	return settings.BackendHost
}

// Init waits for the bridge to become ready and seeds the default tree on
// first run. A bridge that is not ready within the timeout fails Init
// permanently for the lifetime of this provider.
func (p *HostProvider) Init(ctx context.Context) error {
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if p.initialized {
		return nil
	}
	if p.initErr != nil {
		return p.initErr
	}

	if err := p.waitReady(ctx); err != nil {
		return err
	}
	if err := p.seedDefaults(ctx); err != nil {
		return err
	}

	p.initialized = true
	p.logger.Debug("Host settings provider initialized")
	return nil
}

func (p *HostProvider) waitReady(ctx context.Context) error {
	if p.bridge == nil {
		p.initErr = settings.ErrBridgeUnavailable
		return p.initErr
	}

	deadline := time.Now().Add(p.opts.ReadyTimeout)
	for {
		err := p.bridge.Ready(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			p.initErr = fmt.Errorf("%w: not ready after %s: %v", settings.ErrBridgeUnavailable, p.opts.ReadyTimeout, err)
			p.logger.Error("Host settings bridge never became ready", "timeout", p.opts.ReadyTimeout, "error", err)
			return p.initErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.opts.ReadyInterval):
		}
	}
}

func (p *HostProvider) seedDefaults(ctx context.Context) error {
	_, found, err := p.bridge.Get(ctx, schema.SectionApplication)
	if err != nil {
		logStorageFailure(p.logger, "init", schema.SectionApplication, err)
		return err
	}
	if found {
		return nil
	}

	existing, err := p.bridge.Export(ctx)
	if err != nil {
		logStorageFailure(p.logger, "init", "", err)
		return err
	}
	for section, def := range schema.Defaults() {
		if _, ok := existing[section]; ok {
			continue
		}
		if err := p.bridge.Set(ctx, section, def); err != nil {
			logStorageFailure(p.logger, "init", section, err)
			return err
		}
	}
	p.logger.Info("Seeded default settings", "backend", settings.BackendHost)
	return nil
}

func (p *HostProvider) ensure(ctx context.Context, op string) bool {
	if err := p.Init(ctx); err != nil {
		p.logger.Warn("Host settings provider not initialized", "operation", op, "error", err)
		return false
	}
	return true
}

// Get returns the stored value, the schema default, or nil.
func (p *HostProvider) Get(ctx context.Context, keyPath string) any {
	if !p.ensure(ctx, "get") {
		return defaultValue(keyPath)
	}
	value, found, err := p.bridge.Get(ctx, keyPath)
	if err != nil {
		logStorageFailure(p.logger, "get", keyPath, err)
		return defaultValue(keyPath)
	}
	if !found {
		return defaultValue(keyPath)
	}
	return value
}

func (p *HostProvider) Set(ctx context.Context, keyPath string, value any) error {
	normalized, err := prepareWrite(keyPath, value)
	if err != nil {
		p.logger.Warn("Rejected setting write", "key", keyPath, "error", err)
		return err
	}
	if err := p.Init(ctx); err != nil {
		return err
	}
	if err := p.bridge.Set(ctx, keyPath, normalized); err != nil {
		logStorageFailure(p.logger, "set", keyPath, err)
		return asStorageError("set", keyPath, err)
	}

	p.written(keyPath, normalized)
	return nil
}

func (p *HostProvider) Reset(ctx context.Context, section string) error {
	target, err := resetTarget(section)
	if err != nil {
		return err
	}
	if err := p.Init(ctx); err != nil {
		return err
	}

	if target == settings.SectionAll {
		err = p.bridge.Import(ctx, schema.Defaults())
	} else {
		def, _ := schema.DefaultSection(target)
		err = p.bridge.Set(ctx, target, def)
	}
	if err != nil {
		logStorageFailure(p.logger, "reset", target, err)
		return asStorageError("reset", target, err)
	}

	p.reset(target)
	return nil
}

func (p *HostProvider) Has(ctx context.Context, keyPath string) bool {
	if !p.ensure(ctx, "has") {
		return false
	}
	_, found, err := p.bridge.Get(ctx, keyPath)
	if err != nil {
		logStorageFailure(p.logger, "has", keyPath, err)
		return false
	}
	return found
}

func (p *HostProvider) Export(ctx context.Context) (map[string]any, error) {
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	tree, err := p.bridge.Export(ctx)
	if err != nil {
		logStorageFailure(p.logger, "export", "", err)
		return nil, asStorageError("export", "", err)
	}
	return tree, nil
}

func (p *HostProvider) Import(ctx context.Context, tree map[string]any) error {
	normalized, err := prepareImport(tree)
	if err != nil {
		p.logger.Warn("Rejected settings import", "error", err)
		return err
	}
	if err := p.Init(ctx); err != nil {
		return err
	}
	if err := p.bridge.Import(ctx, normalized); err != nil {
		logStorageFailure(p.logger, "import", "", err)
		return asStorageError("import", "", err)
	}

	p.imported()
	return nil
}

func asStorageError(operation, keyPath string, err error) error {
	var sErr *settings.StorageError
	if errors.As(err, &sErr) {
		return err
	}
	return settings.NewStorageError(operation, keyPath, err)
}
