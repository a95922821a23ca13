package transport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/localstore"
	"invoicedesk/internal/provider"
	"invoicedesk/internal/services"
)

type fakeDialogs struct {
	openPath string
	savePath string
	saveName string
}

func (d *fakeDialogs) OpenConfigurationFile() (string, error) {
	return d.openPath, nil
}

func (d *fakeDialogs) SaveConfigurationFile(filename string) (string, error) {
	d.saveName = filename
	return d.savePath, nil
}

type emitted struct {
	name string
	data []any
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(name string, data ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{name: name, data: data})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.name
	}
	return names
}

func newTestAPI(t *testing.T, dialogs DialogHandler) (*SettingsAPI, *services.ConfigurationService) {
	ctx := context.Background()
	factory := provider.NewFactory(provider.BrowserBacked{}, localstore.NewMemory(), provider.HostOptions{}, nil)
	service := services.NewConfigurationService(factory, nil, nil)
	t.Cleanup(service.Close)
	manager := services.NewConfigurationManager(service, localstore.NewMemory(), nil, services.ManagerOptions{})

	api := NewSettingsAPI(ctx, service, manager, dialogs, "/data", nil)
	api.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return api, service
}

func TestForwardEvents(t *testing.T) {
	api, service := newTestAPI(t, &fakeDialogs{})
	rec := &recorder{}
	stop := ForwardEvents(service, rec.emit)

	require.NoError(t, api.SetSelectedTemplate("modern_green"))
	require.NoError(t, api.SetTheme("dark"))
	require.NoError(t, api.ResetSettings("ui"))

	assert.Equal(t, []string{
		EventSettingChanged, EventTemplateChanged,
		EventSettingChanged, EventThemeChanged,
		EventSettingsReset,
	}, rec.names())

	rec.mu.Lock()
	payload := rec.events[1].data[0].(services.TemplateChanged)
	rec.mu.Unlock()
	assert.Equal(t, "modern_green", payload.TemplateID)

	stop()
	require.NoError(t, api.SetTheme("light"))
	assert.Len(t, rec.names(), 5)
}

func TestSettingsAPIRoundTrip(t *testing.T) {
	api, _ := newTestAPI(t, &fakeDialogs{})

	assert.Equal(t, "classic_blue", api.GetSelectedTemplate())
	require.NoError(t, api.SetSetting("ui.sidebarCollapsed", true))
	assert.Equal(t, true, api.GetSetting("ui.sidebarCollapsed"))
	assert.True(t, api.HasSetting("ui.sidebarCollapsed"))

	assert.Error(t, api.SetSetting("invoice.defaults.cgstRate", 75))

	status := api.GetStatus()
	assert.Equal(t, "browser", status.Backend)
	assert.Equal(t, "not_started", status.MigrationState)
	assert.Equal(t, "/data", status.DataDir)
}

func TestExportAndImportConfigurationFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	dialogs := &fakeDialogs{savePath: path, openPath: path}
	api, _ := newTestAPI(t, dialogs)

	require.NoError(t, api.SetSelectedTemplate("modern_green"))
	res, err := api.ExportConfigurationToFile()
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, "invoicedesk-settings-2026-03-01.json", dialogs.saveName)
	assert.FileExists(t, path)

	require.NoError(t, api.ResetToDefaults())
	assert.Equal(t, "classic_blue", api.GetSelectedTemplate())

	res, err = api.ImportConfigurationFromFile()
	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, "modern_green", api.GetSelectedTemplate())
}

func TestFileDialogsCancelled(t *testing.T) {
	api, _ := newTestAPI(t, &fakeDialogs{})

	res, err := api.ExportConfigurationToFile()
	require.NoError(t, err)
	assert.True(t, res.Cancelled)

	res, err = api.ImportConfigurationFromFile()
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
}

func TestImportConfigurationFromInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	api, _ := newTestAPI(t, &fakeDialogs{openPath: path})

	_, err := api.ImportConfigurationFromFile()
	assert.Error(t, err)
}
