package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

// ExportFormatVersion is written into every configuration export.
const ExportFormatVersion = "1.0"

// Fields of the portable configuration format.
const (
	FieldSelectedTemplate       = "selectedTemplate"
	FieldTemplateSettings       = "templateSettings"
	FieldUserPreferences        = "userPreferences"
	FieldTemplateCustomizations = "templateCustomizations"
)

var configurationFields = []string{
	FieldSelectedTemplate,
	FieldTemplateSettings,
	FieldUserPreferences,
	FieldTemplateCustomizations,
}

// MigrationState tracks the one-time legacy key migration.
type MigrationState int

const (
	MigrationNotStarted MigrationState = iota
	MigrationInProgress
	MigrationCompleted
)

func (s MigrationState) String() string {
	switch s {
	case MigrationNotStarted:
		return "not_started"
	case MigrationInProgress:
		return "in_progress"
	case MigrationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ConfigurationExport is the file format written by ExportConfiguration.
type ConfigurationExport struct {
	Configuration
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// ManagerOptions configures a ConfigurationManager.
type ManagerOptions struct {
	CacheTTL time.Duration
	Journal  settings.MigrationJournal
	Now      func() time.Time
}

// ConfigurationManager is the cached, backward-compatible settings API used by
// older call sites. It also owns the one-time legacy key migration.
type ConfigurationManager struct {
	service *ConfigurationService
	legacy  settings.LocalStorage
	journal settings.MigrationJournal
	cache   *Cache
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.Mutex
	state MigrationState
}

// NewConfigurationManager creates a new configuration manager. legacy is the
// local storage that may still hold pre-migration flat keys.
func NewConfigurationManager(service *ConfigurationService, legacy settings.LocalStorage, logger *slog.Logger, opts ManagerOptions) *ConfigurationManager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &ConfigurationManager{
		service: service,
		legacy:  legacy,
		journal: opts.Journal,
		cache:   NewCache(opts.CacheTTL, opts.Now),
		now:     opts.Now,
		logger:  logger,
	}

	service.OnSettingChanged(func(SettingChanged) { m.cache.Clear() })
	service.OnSettingsReset(func(SettingsReset) { m.cache.Clear() })
	service.OnSettingsImported(func(SettingsImported) { m.cache.Clear() })
	service.OnSettingsReloaded(func(SettingsReloaded) { m.cache.Clear() })

	return m
}

// cached reads through the cache. The provider must be available for a
// value to be cached; otherwise the fallback is returned uncached.
func cached[T any](ctx context.Context, m *ConfigurationManager, key string, read func(context.Context) T) T {
	v, err := m.cache.Get(ctx, key, func(ctx context.Context) (any, error) {
		if err := m.service.Init(ctx); err != nil {
			return nil, err
		}
		return read(ctx), nil
	})
	if err != nil {
		return read(ctx)
	}
	return v.(T)
}

func (m *ConfigurationManager) GetSelectedTemplate(ctx context.Context) string {
	return cached(ctx, m, FieldSelectedTemplate, m.service.GetSelectedTemplate)
}

func (m *ConfigurationManager) SetSelectedTemplate(ctx context.Context, templateID string) error {
	return m.service.SetSelectedTemplate(ctx, templateID)
}

func (m *ConfigurationManager) GetTemplateSettings(ctx context.Context) map[string]any {
	return schema.Clone(cached(ctx, m, FieldTemplateSettings, m.service.GetTemplateSettings)).(map[string]any)
}

func (m *ConfigurationManager) SetTemplateSettings(ctx context.Context, partial map[string]any) error {
	return m.service.UpdateTemplateSettings(ctx, partial)
}

func (m *ConfigurationManager) GetUserPreferences(ctx context.Context) map[string]any {
	return schema.Clone(cached(ctx, m, FieldUserPreferences, m.service.GetUIPreferences)).(map[string]any)
}

func (m *ConfigurationManager) SetUserPreferences(ctx context.Context, partial map[string]any) error {
	return m.service.UpdateUIPreferences(ctx, partial)
}

func (m *ConfigurationManager) GetTemplateCustomizations(ctx context.Context) map[string]any {
	return schema.Clone(cached(ctx, m, FieldTemplateCustomizations, m.service.GetTemplateCustomizations)).(map[string]any)
}

func (m *ConfigurationManager) SetTemplateCustomization(ctx context.Context, templateID string, partial map[string]any) error {
	return m.service.UpdateTemplateCustomization(ctx, templateID, partial)
}

func (m *ConfigurationManager) GetTheme(ctx context.Context) string {
	return cached(ctx, m, "theme", m.service.GetTheme)
}

func (m *ConfigurationManager) SetTheme(ctx context.Context, theme string) error {
	return m.service.SetTheme(ctx, theme)
}

func (m *ConfigurationManager) GetInvoiceDefaults(ctx context.Context) map[string]any {
	return schema.Clone(cached(ctx, m, "invoiceDefaults", m.service.GetInvoiceDefaults)).(map[string]any)
}

func (m *ConfigurationManager) SetInvoiceDefaults(ctx context.Context, partial map[string]any) error {
	return m.service.UpdateInvoiceDefaults(ctx, partial)
}

// MigrationState returns the current legacy migration state.
func (m *ConfigurationManager) MigrationState() MigrationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// MigrateLegacySettings moves legacy flat keys into the settings tree and
// deletes them. It runs once per manager; later calls return false without
// doing anything. Individual key failures are recorded in the report and do
// not stop the others.
func (m *ConfigurationManager) MigrateLegacySettings(ctx context.Context) (settings.MigrationReport, bool) {
	m.mu.Lock()
	if m.state != MigrationNotStarted {
		m.mu.Unlock()
		return settings.MigrationReport{}, false
	}
	m.state = MigrationInProgress
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.state = MigrationCompleted
		m.mu.Unlock()
	}()

	report := settings.MigrationReport{
		RunID:     uuid.NewString(),
		StartedAt: m.now(),
		Migrated:  []string{},
		Failed:    map[string]string{},
		Removed:   []string{},
	}

	var present []string
	for _, lk := range schema.LegacyKeys {
		raw, ok := m.legacy.GetItem(lk.StorageKey)
		if !ok {
			continue
		}
		present = append(present, lk.StorageKey)

		if err := m.migrateKey(ctx, lk, raw); err != nil {
			m.logger.Warn("Failed to migrate legacy setting", "key", lk.StorageKey, "target", lk.KeyPath, "error", err)
			report.Failed[lk.StorageKey] = err.Error()
			continue
		}
		report.Migrated = append(report.Migrated, lk.StorageKey)
	}

	for _, key := range present {
		if err := m.legacy.RemoveItem(key); err != nil {
			m.logger.Warn("Failed to remove legacy setting", "key", key, "error", err)
			continue
		}
		report.Removed = append(report.Removed, key)
	}
	report.CompletedAt = m.now()

	if len(present) == 0 {
		m.logger.Debug("No legacy settings to migrate")
		return report, true
	}

	m.logger.Info("Legacy settings migration finished",
		"run_id", report.RunID,
		"migrated", len(report.Migrated),
		"failed", len(report.Failed),
		"succeeded", report.Succeeded())

	if m.journal != nil {
		if err := m.journal.Record(ctx, report); err != nil {
			m.logger.Warn("Failed to record migration report", "run_id", report.RunID, "error", err)
		}
	}
	return report, true
}

func (m *ConfigurationManager) migrateKey(ctx context.Context, lk schema.LegacyKey, raw string) error {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("decode %s: %w", lk.StorageKey, err)
	}

	switch lk.KeyPath {
	case schema.KeySelectedTemplate:
		id, ok := value.(string)
		if !ok {
			return settings.NewValidationError(lk.KeyPath, value, "expected template id string")
		}
		return m.service.SetSelectedTemplate(ctx, id)

	case schema.KeyTemplateSettings:
		obj, err := objectValue(lk.KeyPath, value)
		if err != nil {
			return err
		}
		return m.service.UpdateTemplateSettings(ctx, obj)

	case schema.KeyTemplateCustomizations:
		obj, err := objectValue(lk.KeyPath, value)
		if err != nil {
			return err
		}
		return m.applyCustomizations(ctx, obj)

	case schema.KeyInvoiceDefaults:
		obj, err := objectValue(lk.KeyPath, value)
		if err != nil {
			return err
		}
		return m.service.UpdateInvoiceDefaults(ctx, obj)

	case schema.KeyCompanyInitials:
		obj, err := objectValue(lk.KeyPath, value)
		if err != nil {
			return err
		}
		var errs []error
		for _, companyID := range sortedKeys(obj) {
			initials, ok := obj[companyID].(string)
			if !ok {
				errs = append(errs, settings.NewValidationError(lk.KeyPath+"."+companyID, obj[companyID], "expected string"))
				continue
			}
			errs = append(errs, m.service.SetCompanyInitials(ctx, companyID, initials))
		}
		return errors.Join(errs...)

	case schema.SectionUI:
		obj, err := objectValue(lk.KeyPath, value)
		if err != nil {
			return err
		}
		return m.service.UpdateUIPreferences(ctx, obj)

	default:
		return m.service.Set(ctx, lk.KeyPath, value)
	}
}

func (m *ConfigurationManager) applyCustomizations(ctx context.Context, all map[string]any) error {
	var errs []error
	for _, templateID := range sortedKeys(all) {
		obj, err := objectValue(schema.KeyTemplateCustomizations+"."+templateID, all[templateID])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, m.service.UpdateTemplateCustomization(ctx, templateID, obj))
	}
	return errors.Join(errs...)
}

// ValidateConfiguration checks the top-level shape of a configuration
// object: each known field, when present, must be of the expected kind.
func (m *ConfigurationManager) ValidateConfiguration(cfg map[string]any) error {
	if v, ok := cfg[FieldSelectedTemplate]; ok {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: %s must be a string", settings.ErrInvalidImport, FieldSelectedTemplate)
		}
	}
	for _, field := range configurationFields[1:] {
		v, ok := cfg[field]
		if !ok {
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: %s must be an object", settings.ErrInvalidImport, field)
		}
	}
	return nil
}

// ExportConfiguration renders the portable configuration as JSON.
func (m *ConfigurationManager) ExportConfiguration(ctx context.Context) ([]byte, error) {
	export := ConfigurationExport{
		Configuration: m.service.Snapshot(ctx),
		ExportedAt:    m.now().UTC(),
		Version:       ExportFormatVersion,
	}
	return json.MarshalIndent(export, "", "  ")
}

// ImportConfiguration applies a configuration produced by
// ExportConfiguration. Malformed or structurally invalid input is rejected
// before anything is written. The returned error joins every failed write.
func (m *ConfigurationManager) ImportConfiguration(ctx context.Context, data []byte) error {
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %v", settings.ErrInvalidImport, err)
	}
	if err := m.ValidateConfiguration(cfg); err != nil {
		m.logger.Warn("Rejected configuration import", "error", err)
		return err
	}
	if !lo.SomeBy(configurationFields, func(f string) bool { _, ok := cfg[f]; return ok }) {
		return fmt.Errorf("%w: none of the fields %v present", settings.ErrInvalidImport, configurationFields)
	}

	var errs []error
	if v, ok := cfg[FieldSelectedTemplate].(string); ok {
		errs = append(errs, m.service.SetSelectedTemplate(ctx, v))
	}
	if v, ok := cfg[FieldTemplateSettings].(map[string]any); ok {
		errs = append(errs, m.service.UpdateTemplateSettings(ctx, v))
	}
	if v, ok := cfg[FieldUserPreferences].(map[string]any); ok {
		errs = append(errs, m.service.UpdateUIPreferences(ctx, v))
	}
	if v, ok := cfg[FieldTemplateCustomizations].(map[string]any); ok {
		errs = append(errs, m.applyCustomizations(ctx, v))
	}
	m.cache.Clear()

	if err := errors.Join(errs...); err != nil {
		m.logger.Warn("Configuration import partially failed", "error", err)
		return err
	}
	m.logger.Info("Configuration imported")
	return nil
}

// ResetToDefaults restores every section to its defaults.
func (m *ConfigurationManager) ResetToDefaults(ctx context.Context) error {
	defer m.cache.Clear()
	return m.service.Reset(ctx, settings.SectionAll)
}

func objectValue(keyPath string, v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, settings.NewValidationError(keyPath, v, "expected object")
	}
	return obj, nil
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
