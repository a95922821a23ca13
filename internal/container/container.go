package container

import (
	"context"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/hoststore"
	"invoicedesk/internal/localstore"
	"invoicedesk/internal/provider"
	"invoicedesk/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *slog.Logger

	// Storage
	localStorage *localstore.FileStorage
	hostStore    *hoststore.Store
	companies    *hoststore.Companies
	journal      *hoststore.Journal

	// Services
	factory *provider.Factory
	service *services.ConfigurationService
	manager *services.ConfigurationManager

	watchMu     sync.Mutex
	stopWatcher context.CancelFunc
}

// New creates a new dependency injection container. db may be nil when the
// database could not be opened; settings then live in local storage only.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Container, error) {
	c := &Container{
		config: cfg,
		db:     db,
		logger: cfg.Logger,
	}

	if err := c.initServices(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// initServices initializes all services with their dependencies
func (c *Container) initServices(ctx context.Context) error {
	storage, err := localstore.NewFileStorage(c.config.LocalStoragePath, c.logger)
	if err != nil {
		return err
	}
	c.localStorage = storage

	var (
		bridge    settings.HostBridge
		companies settings.CompanyRecords
		journal   settings.MigrationJournal
	)
	if c.db != nil {
		c.hostStore = hoststore.NewStore(c.db)
		c.companies = hoststore.NewCompanies(c.db)
		c.journal = hoststore.NewJournal(c.db)
		bridge, companies, journal = c.hostStore, c.companies, c.journal
	}

	c.factory = provider.NewFactory(provider.Detect(bridge), storage, c.config.HostOptions(), c.logger)
	c.service = services.NewConfigurationService(c.factory, companies, c.logger)
	c.manager = services.NewConfigurationManager(c.service, storage, c.logger, services.ManagerOptions{
		CacheTTL: c.config.Cache.TTL,
		Journal:  journal,
	})

	if err := c.service.Init(ctx); err != nil {
		c.logger.Error("Settings provider unavailable", "error", err)
	}
	return nil
}

// StartWatcher reloads settings when another process rewrites the local
// storage file. It only runs for the browser backend.
func (c *Container) StartWatcher(ctx context.Context) error {
	if !c.config.LocalStorage.Watch {
		return nil
	}
	backend, err := c.service.Backend(ctx)
	if err != nil {
		return err
	}
	if backend != settings.BackendBrowser {
		return nil
	}

	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.stopWatcher != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	delay := c.config.LocalStorage.WatchDebounce
	if delay <= 0 {
		delay = localstore.DefaultWatchDelay
	}
	err = c.localStorage.Watch(watchCtx, delay, func() {
		if c.service.Reload(watchCtx) {
			c.logger.Info("Settings reloaded from disk", "path", c.localStorage.Path())
		}
	})
	if err != nil {
		cancel()
		return err
	}
	c.stopWatcher = cancel
	return nil
}

// Close stops background work and releases subscriptions.
func (c *Container) Close() {
	c.watchMu.Lock()
	if c.stopWatcher != nil {
		c.stopWatcher()
		c.stopWatcher = nil
	}
	c.watchMu.Unlock()

	c.service.Close()
}

// GetConfigurationService returns the settings facade
func (c *Container) GetConfigurationService() *services.ConfigurationService {
	return c.service
}

// GetConfigurationManager returns the cached settings manager
func (c *Container) GetConfigurationManager() *services.ConfigurationManager {
	return c.manager
}

// GetCompanies returns the company record store, or nil without a database
func (c *Container) GetCompanies() *hoststore.Companies {
	return c.companies
}

// GetJournal returns the migration journal, or nil without a database
func (c *Container) GetJournal() *hoststore.Journal {
	return c.journal
}

// GetLocalStorage returns the file-backed local storage
func (c *Container) GetLocalStorage() *localstore.FileStorage {
	return c.localStorage
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}
