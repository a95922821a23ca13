package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

func TestSelectedTemplateDefaultsToClassicBlue(t *testing.T) {
	service, _ := newBrowserService(t)
	assert.Equal(t, "classic_blue", service.GetSelectedTemplate(context.Background()))
}

func TestSetSelectedTemplateEmitsTemplateChanged(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	var got []string
	service.OnTemplateChanged(func(e TemplateChanged) {
		assert.False(t, e.Timestamp.IsZero())
		got = append(got, e.TemplateID)
	})

	require.NoError(t, service.SetSelectedTemplate(ctx, "modern_green"))
	assert.Equal(t, "modern_green", service.GetSelectedTemplate(ctx))

	err := service.SetSelectedTemplate(ctx, "not_a_template")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Equal(t, "modern_green", service.GetSelectedTemplate(ctx))

	assert.Equal(t, []string{"modern_green"}, got)
}

func TestThemeChangedFromLeafAndSectionWrites(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	var themes []string
	var keys []string
	service.OnThemeChanged(func(e ThemeChanged) { themes = append(themes, e.Theme) })
	service.OnSettingChanged(func(e SettingChanged) { keys = append(keys, e.KeyPath) })

	require.NoError(t, service.SetTheme(ctx, "dark"))
	require.NoError(t, service.Set(ctx, schema.SectionUI, map[string]any{"theme": "system"}))
	require.NoError(t, service.Set(ctx, schema.KeyUIZoomLevel, 110))

	assert.Equal(t, []string{"dark", "system"}, themes)
	assert.Equal(t, []string{schema.KeyUITheme, schema.SectionUI, schema.KeyUIZoomLevel}, keys)
	assert.Equal(t, "system", service.GetTheme(ctx))
}

func TestTemplateSettingsMerge(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	require.NoError(t, service.Set(ctx, schema.KeyTemplateSettings, map[string]any{"pageSize": "A4", "fontSize": "normal"}))
	require.NoError(t, service.SetTemplateSettings(ctx, map[string]any{"fontSize": "large"}))

	assert.Equal(t, map[string]any{"pageSize": "A4", "fontSize": "large"}, service.GetTemplateSettings(ctx))
}

func TestTemplateCustomizationMerge(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	require.NoError(t, service.UpdateTemplateCustomization(ctx, "modern_green", map[string]any{"accent": "#0a0"}))
	require.NoError(t, service.UpdateTemplateCustomization(ctx, "modern_green", map[string]any{"font": "Inter"}))
	require.NoError(t, service.UpdateTemplateCustomization(ctx, "compact_mono", map[string]any{"font": "Mono"}))

	assert.Equal(t, map[string]any{"accent": "#0a0", "font": "Inter"}, service.GetTemplateCustomization(ctx, "modern_green"))
	assert.Len(t, service.GetTemplateCustomizations(ctx), 2)

	require.NoError(t, service.ResetTemplateCustomization(ctx, "modern_green"))
	assert.Empty(t, service.GetTemplateCustomization(ctx, "modern_green"))
	assert.Len(t, service.GetTemplateCustomizations(ctx), 1)

	require.NoError(t, service.ResetTemplateCustomization(ctx, "never_customized"))
	assert.ErrorIs(t, service.UpdateTemplateCustomization(ctx, "", map[string]any{"a": 1}), settings.ErrValidation)
}

func TestSubscriberPanicDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	service.OnThemeChanged(func(ThemeChanged) { panic("broken widget") })
	var delivered bool
	service.OnThemeChanged(func(ThemeChanged) { delivered = true })

	require.NoError(t, service.SetTheme(ctx, "dark"))
	assert.True(t, delivered)
}

func TestResetAndImportEvents(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	var sections []string
	var imports int
	service.OnSettingsReset(func(e SettingsReset) { sections = append(sections, e.Section) })
	service.OnSettingsImported(func(SettingsImported) { imports++ })

	require.NoError(t, service.SetTheme(ctx, "dark"))
	require.NoError(t, service.Reset(ctx, schema.SectionUI))
	require.NoError(t, service.Reset(ctx, ""))

	tree, err := service.Export(ctx)
	require.NoError(t, err)
	require.NoError(t, service.Import(ctx, tree))

	assert.Equal(t, []string{schema.SectionUI, settings.SectionAll}, sections)
	assert.Equal(t, 1, imports)
	assert.Equal(t, "light", service.GetTheme(ctx))
}

func TestSubscribeKey(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)

	var values []any
	unsubscribe, err := service.SubscribeKey(ctx, schema.KeyDefaultCompanyID, func(v any, _ string) { values = append(values, v) })
	require.NoError(t, err)

	require.NoError(t, service.SetDefaultCompanyID(ctx, "c-1"))
	unsubscribe()
	require.NoError(t, service.SetDefaultCompanyID(ctx, "c-2"))

	assert.Equal(t, []any{"c-1"}, values)
	assert.Equal(t, "c-2", service.GetDefaultCompanyID(ctx))
}

func TestProviderUnavailable(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("no storage at all")
	service := NewConfigurationService(failingSource{err: boom}, nil, nil)

	assert.Equal(t, "classic_blue", service.GetSelectedTemplate(ctx))
	assert.Equal(t, "light", service.GetTheme(ctx))
	assert.ErrorIs(t, service.SetTheme(ctx, "dark"), boom)
	assert.False(t, service.Has(ctx, schema.KeyUITheme))
	assert.False(t, service.Reload(ctx))

	_, err := service.Backend(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestBackendParity(t *testing.T) {
	ctx := context.Background()
	browser, _ := newBrowserService(t)
	host := newHostService(t).service

	for _, service := range []*ConfigurationService{browser, host} {
		require.NoError(t, service.SetSelectedTemplate(ctx, "elegant_maroon"))
		require.NoError(t, service.UpdateTemplateSettings(ctx, map[string]any{"fontSize": "small"}))

		assert.Equal(t, "elegant_maroon", service.GetSelectedTemplate(ctx))
		assert.Equal(t, "small", service.GetTemplateSettings(ctx)["fontSize"])
		assert.Equal(t, "A4", service.GetTemplateSettings(ctx)["pageSize"])
	}

	b, err := browser.Backend(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.BackendBrowser, b)
	h, err := host.Backend(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.BackendHost, h)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	service, _ := newBrowserService(t)
	require.NoError(t, service.SetTheme(ctx, "dark"))

	snap := service.Snapshot(ctx)
	assert.Equal(t, "classic_blue", snap.SelectedTemplate)
	assert.Equal(t, "dark", snap.UserPreferences["theme"])
	assert.Equal(t, "A4", snap.TemplateSettings["pageSize"])
	assert.Empty(t, snap.TemplateCustomizations)
}
