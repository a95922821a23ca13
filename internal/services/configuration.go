package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/events"
	"invoicedesk/internal/schema"
)

// ProviderSource yields the process settings provider.
type ProviderSource interface {
	Provider(ctx context.Context) (settings.Provider, error)
}

// Configuration is the portable subset of settings exchanged with older
// call sites and configuration files.
type Configuration struct {
	SelectedTemplate       string         `json:"selectedTemplate"`
	TemplateSettings       map[string]any `json:"templateSettings"`
	UserPreferences        map[string]any `json:"userPreferences"`
	TemplateCustomizations map[string]any `json:"templateCustomizations"`
}

// ConfigurationService is the domain facade over the settings provider.
type ConfigurationService struct {
	source    ProviderSource
	companies settings.CompanyRecords
	logger    *slog.Logger

	initMu   sync.Mutex
	provider settings.Provider
	unwatch  func()

	settingChanged   *events.Topic[SettingChanged]
	templateChanged  *events.Topic[TemplateChanged]
	themeChanged     *events.Topic[ThemeChanged]
	settingsReset    *events.Topic[SettingsReset]
	settingsImported *events.Topic[SettingsImported]
	settingsReloaded *events.Topic[SettingsReloaded]
}

// NewConfigurationService creates a new configuration service. companies may
// be nil when no host company records are available.
func NewConfigurationService(source ProviderSource, companies settings.CompanyRecords, logger *slog.Logger) *ConfigurationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigurationService{
		source:           source,
		companies:        companies,
		logger:           logger,
		settingChanged:   events.NewTopic[SettingChanged]("setting-changed", logger),
		templateChanged:  events.NewTopic[TemplateChanged]("template-changed", logger),
		themeChanged:     events.NewTopic[ThemeChanged]("theme-changed", logger),
		settingsReset:    events.NewTopic[SettingsReset]("settings-reset", logger),
		settingsImported: events.NewTopic[SettingsImported]("settings-imported", logger),
		settingsReloaded: events.NewTopic[SettingsReloaded]("settings-reloaded", logger),
	}
}

// Init resolves the provider and attaches event re-emission. Safe to call
// repeatedly; every other method calls it.
func (s *ConfigurationService) Init(ctx context.Context) error {
	_, err := s.ready(ctx)
	return err
}

func (s *ConfigurationService) ready(ctx context.Context) (settings.Provider, error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.provider != nil {
		return s.provider, nil
	}
	p, err := s.source.Provider(ctx)
	if err != nil {
		s.logger.Error("Failed to initialize settings provider", "error", err)
		return nil, err
	}
	s.provider = p
	s.unwatch = p.Watch(s.relay)
	s.logger.Info("Configuration service initialized", "backend", p.Kind())
	return p, nil
}

// Close detaches the service from the provider's change stream
func (s *ConfigurationService) Close() {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
}

// Backend reports which storage backend is active.
func (s *ConfigurationService) Backend(ctx context.Context) (settings.Backend, error) {
	p, err := s.ready(ctx)
	if err != nil {
		return "", err
	}
	return p.Kind(), nil
}

// relay turns provider change events into domain events.
func (s *ConfigurationService) relay(e settings.ChangeEvent) {
	switch e.Kind {
	case settings.ChangeSet:
		s.settingChanged.Emit(SettingChanged{KeyPath: e.KeyPath, Value: e.Value, Timestamp: e.Timestamp})
		if v, ok := leafOf(e, schema.KeySelectedTemplate); ok {
			if id, ok := v.(string); ok {
				s.templateChanged.Emit(TemplateChanged{TemplateID: id, Timestamp: e.Timestamp})
			}
		}
		if v, ok := leafOf(e, schema.KeyUITheme); ok {
			if theme, ok := v.(string); ok {
				s.themeChanged.Emit(ThemeChanged{Theme: theme, Timestamp: e.Timestamp})
			}
		}
	case settings.ChangeReset:
		s.settingsReset.Emit(SettingsReset{Section: e.Section, Timestamp: e.Timestamp})
	case settings.ChangeImport:
		s.settingsImported.Emit(SettingsImported{Timestamp: e.Timestamp})
	case settings.ChangeReload:
		s.settingsReloaded.Emit(SettingsReloaded{Timestamp: e.Timestamp})
	}
}

// leafOf extracts target from a write event whose key path is target or one
// of its ancestors.
func leafOf(e settings.ChangeEvent, target string) (any, bool) {
	if e.KeyPath == target {
		return e.Value, true
	}
	rest, ok := strings.CutPrefix(target, e.KeyPath+".")
	if !ok {
		return nil, false
	}
	tree, ok := e.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	return schema.Lookup(tree, rest)
}

// OnSettingChanged subscribes to every key-path write.
func (s *ConfigurationService) OnSettingChanged(fn func(SettingChanged)) func() {
	return s.settingChanged.Subscribe(fn)
}

// OnTemplateChanged subscribes to selected-template changes.
func (s *ConfigurationService) OnTemplateChanged(fn func(TemplateChanged)) func() {
	return s.templateChanged.Subscribe(fn)
}

// OnThemeChanged subscribes to theme changes.
func (s *ConfigurationService) OnThemeChanged(fn func(ThemeChanged)) func() {
	return s.themeChanged.Subscribe(fn)
}

// OnSettingsReset subscribes to resets.
func (s *ConfigurationService) OnSettingsReset(fn func(SettingsReset)) func() {
	return s.settingsReset.Subscribe(fn)
}

// OnSettingsImported subscribes to whole-tree imports.
func (s *ConfigurationService) OnSettingsImported(fn func(SettingsImported)) func() {
	return s.settingsImported.Subscribe(fn)
}

// OnSettingsReloaded subscribes to reloads after external storage changes.
func (s *ConfigurationService) OnSettingsReloaded(fn func(SettingsReloaded)) func() {
	return s.settingsReloaded.Subscribe(fn)
}

// SubscribeKey registers fn for writes to exactly keyPath.
func (s *ConfigurationService) SubscribeKey(ctx context.Context, keyPath string, fn func(value any, keyPath string)) (func(), error) {
	p, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	return p.Subscribe(keyPath, fn), nil
}

// Get returns the value at keyPath, falling back to the schema default.
func (s *ConfigurationService) Get(ctx context.Context, keyPath string) any {
	p, err := s.ready(ctx)
	if err != nil {
		v, _ := schema.DefaultFor(keyPath)
		return v
	}
	return p.Get(ctx, keyPath)
}

func (s *ConfigurationService) Set(ctx context.Context, keyPath string, value any) error {
	p, err := s.ready(ctx)
	if err != nil {
		return err
	}
	return p.Set(ctx, keyPath, value)
}

func (s *ConfigurationService) Has(ctx context.Context, keyPath string) bool {
	p, err := s.ready(ctx)
	if err != nil {
		return false
	}
	return p.Has(ctx, keyPath)
}

// Reset restores section (or everything when section is "" or "all").
func (s *ConfigurationService) Reset(ctx context.Context, section string) error {
	p, err := s.ready(ctx)
	if err != nil {
		return err
	}
	return p.Reset(ctx, section)
}

// Export returns the full settings tree.
func (s *ConfigurationService) Export(ctx context.Context) (map[string]any, error) {
	p, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	return p.Export(ctx)
}

// Import replaces the full settings tree.
func (s *ConfigurationService) Import(ctx context.Context, tree map[string]any) error {
	p, err := s.ready(ctx)
	if err != nil {
		return err
	}
	return p.Import(ctx, tree)
}

// Reload re-reads settings after an external storage change. It reports
// false when the active backend has nothing to reload.
func (s *ConfigurationService) Reload(ctx context.Context) bool {
	p, err := s.ready(ctx)
	if err != nil {
		return false
	}
	r, ok := p.(interface{ Reload(context.Context) bool })
	if !ok {
		return false
	}
	return r.Reload(ctx)
}

// Snapshot collects the portable configuration subset.
func (s *ConfigurationService) Snapshot(ctx context.Context) Configuration {
	return Configuration{
		SelectedTemplate:       s.GetSelectedTemplate(ctx),
		TemplateSettings:       s.GetTemplateSettings(ctx),
		UserPreferences:        s.GetUIPreferences(ctx),
		TemplateCustomizations: s.GetTemplateCustomizations(ctx),
	}
}

func (s *ConfigurationService) getString(ctx context.Context, keyPath string) string {
	v, _ := s.Get(ctx, keyPath).(string)
	return v
}

func (s *ConfigurationService) getMap(ctx context.Context, keyPath string) map[string]any {
	return asMap(s.Get(ctx, keyPath))
}

// updateKeys writes each entry of partial under prefix as its own key path.
func (s *ConfigurationService) updateKeys(ctx context.Context, prefix string, partial map[string]any) error {
	keys := lo.Keys(partial)
	slices.Sort(keys)

	var errs []error
	for _, k := range keys {
		if err := s.Set(ctx, prefix+"."+k, partial[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func asMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return map[string]any{}
	}
	return m
}
