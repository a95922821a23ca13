package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"invoicedesk/internal/database"
	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/hoststore"
	"invoicedesk/internal/localstore"
	"invoicedesk/internal/provider"
)

func newBrowserService(t *testing.T) (*ConfigurationService, *localstore.Memory) {
	storage := localstore.NewMemory()
	factory := provider.NewFactory(provider.BrowserBacked{}, storage, provider.HostOptions{}, nil)
	service := NewConfigurationService(factory, nil, nil)
	t.Cleanup(service.Close)
	return service, storage
}

type hostEnv struct {
	service   *ConfigurationService
	companies *hoststore.Companies
	journal   *hoststore.Journal
	storage   *localstore.Memory
}

func newHostService(t *testing.T) hostEnv {
	db, err := database.Initialize(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	storage := localstore.NewMemory()
	companies := hoststore.NewCompanies(db)
	factory := provider.NewFactory(provider.Detect(hoststore.NewStore(db)), storage, provider.HostOptions{}, nil)
	service := NewConfigurationService(factory, companies, nil)
	t.Cleanup(service.Close)

	return hostEnv{
		service:   service,
		companies: companies,
		journal:   hoststore.NewJournal(db),
		storage:   storage,
	}
}

type failingSource struct{ err error }

func (f failingSource) Provider(context.Context) (settings.Provider, error) {
	return nil, f.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingJournal struct {
	mu      sync.Mutex
	reports []settings.MigrationReport
}

func (j *recordingJournal) Record(_ context.Context, report settings.MigrationReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, report)
	return nil
}
