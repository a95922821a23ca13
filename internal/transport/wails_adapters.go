package transport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"invoicedesk/internal/common"
	"invoicedesk/internal/services"
)

// SettingsAPI adapts the configuration services to the Wails binding surface.
type SettingsAPI struct {
	ctx            context.Context
	service        *services.ConfigurationService
	manager        *services.ConfigurationManager
	dialogsHandler DialogHandler
	dataDir        string
	logger         *slog.Logger
	now            func() time.Time
}

func NewSettingsAPI(
	ctx context.Context,
	service *services.ConfigurationService,
	manager *services.ConfigurationManager,
	dialogsHandler DialogHandler,
	dataDir string,
	logger *slog.Logger,
) *SettingsAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsAPI{
		ctx:            ctx,
		service:        service,
		manager:        manager,
		dialogsHandler: dialogsHandler,
		dataDir:        dataDir,
		logger:         logger,
		now:            time.Now,
	}
}

func (a *SettingsAPI) GetSetting(keyPath string) any {
	return a.service.Get(a.ctx, keyPath)
}

func (a *SettingsAPI) SetSetting(keyPath string, value any) error {
	return a.service.Set(a.ctx, keyPath, value)
}

func (a *SettingsAPI) HasSetting(keyPath string) bool {
	return a.service.Has(a.ctx, keyPath)
}

func (a *SettingsAPI) ResetSettings(section string) error {
	return a.service.Reset(a.ctx, section)
}

func (a *SettingsAPI) ExportSettings() (map[string]any, error) {
	return a.service.Export(a.ctx)
}

func (a *SettingsAPI) ImportSettings(tree map[string]any) error {
	return a.service.Import(a.ctx, tree)
}

func (a *SettingsAPI) GetSelectedTemplate() string {
	return a.manager.GetSelectedTemplate(a.ctx)
}

func (a *SettingsAPI) SetSelectedTemplate(templateID string) error {
	return a.manager.SetSelectedTemplate(a.ctx, templateID)
}

func (a *SettingsAPI) GetTemplateSettings() map[string]any {
	return a.manager.GetTemplateSettings(a.ctx)
}

func (a *SettingsAPI) UpdateTemplateSettings(partial map[string]any) error {
	return a.manager.SetTemplateSettings(a.ctx, partial)
}

func (a *SettingsAPI) GetTemplateCustomization(templateID string) map[string]any {
	return a.service.GetTemplateCustomization(a.ctx, templateID)
}

func (a *SettingsAPI) UpdateTemplateCustomization(templateID string, partial map[string]any) error {
	return a.manager.SetTemplateCustomization(a.ctx, templateID, partial)
}

func (a *SettingsAPI) ResetTemplateCustomization(templateID string) error {
	return a.service.ResetTemplateCustomization(a.ctx, templateID)
}

func (a *SettingsAPI) GetTheme() string {
	return a.manager.GetTheme(a.ctx)
}

func (a *SettingsAPI) SetTheme(theme string) error {
	return a.manager.SetTheme(a.ctx, theme)
}

func (a *SettingsAPI) GetUIPreferences() map[string]any {
	return a.manager.GetUserPreferences(a.ctx)
}

func (a *SettingsAPI) UpdateUIPreferences(partial map[string]any) error {
	return a.manager.SetUserPreferences(a.ctx, partial)
}

func (a *SettingsAPI) GetInvoiceDefaults() map[string]any {
	return a.manager.GetInvoiceDefaults(a.ctx)
}

func (a *SettingsAPI) UpdateInvoiceDefaults(partial map[string]any) error {
	return a.manager.SetInvoiceDefaults(a.ctx, partial)
}

func (a *SettingsAPI) GetTallySettings() map[string]any {
	return a.service.GetTallySettings(a.ctx)
}

func (a *SettingsAPI) UpdateTallySettings(partial map[string]any) error {
	return a.service.UpdateTallySettings(a.ctx, partial)
}

func (a *SettingsAPI) GetDefaultCompanyID() string {
	return a.service.GetDefaultCompanyID(a.ctx)
}

func (a *SettingsAPI) SetDefaultCompanyID(companyID string) error {
	return a.service.SetDefaultCompanyID(a.ctx, companyID)
}

func (a *SettingsAPI) GetCompanyInitials(companyID string) string {
	return a.service.GetCompanyInitials(a.ctx, companyID)
}

func (a *SettingsAPI) SetCompanyInitials(companyID, initials string) error {
	return a.service.SetCompanyInitials(a.ctx, companyID, initials)
}

func (a *SettingsAPI) ExportConfiguration() (string, error) {
	data, err := a.manager.ExportConfiguration(a.ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *SettingsAPI) ImportConfiguration(data string) error {
	return a.manager.ImportConfiguration(a.ctx, []byte(data))
}

func (a *SettingsAPI) ResetToDefaults() error {
	return a.manager.ResetToDefaults(a.ctx)
}

// ExportConfigurationToFile asks for a destination and writes the exported
// configuration there.
func (a *SettingsAPI) ExportConfigurationToFile() (FileTransferResult, error) {
	filename := fmt.Sprintf("invoicedesk-settings-%s.json", a.now().Format("2006-01-02"))
	path, err := a.dialogsHandler.SaveConfigurationFile(filename)
	if err != nil {
		return FileTransferResult{}, err
	}
	if path == "" {
		return FileTransferResult{Cancelled: true, Timestamp: a.now()}, nil
	}

	data, err := a.manager.ExportConfiguration(a.ctx)
	if err != nil {
		return FileTransferResult{}, err
	}
	if err := common.WriteFileAtomic(path, data, common.DefaultFilePermissions); err != nil {
		a.logger.Error("Failed to write settings export", "path", path, "error", err)
		return FileTransferResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	a.logger.Info("Settings exported", "path", path)
	return FileTransferResult{Path: path, Timestamp: a.now()}, nil
}

// ImportConfigurationFromFile asks for a configuration file and applies it.
func (a *SettingsAPI) ImportConfigurationFromFile() (FileTransferResult, error) {
	path, err := a.dialogsHandler.OpenConfigurationFile()
	if err != nil {
		return FileTransferResult{}, err
	}
	if path == "" {
		return FileTransferResult{Cancelled: true, Timestamp: a.now()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileTransferResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := a.manager.ImportConfiguration(a.ctx, data); err != nil {
		return FileTransferResult{}, err
	}

	a.logger.Info("Settings imported", "path", path)
	return FileTransferResult{Path: path, Timestamp: a.now()}, nil
}

func (a *SettingsAPI) GetStatus() SettingsStatus {
	status := SettingsStatus{
		MigrationState: a.manager.MigrationState().String(),
		DataDir:        a.dataDir,
	}
	if backend, err := a.service.Backend(a.ctx); err == nil {
		status.Backend = string(backend)
	}
	return status
}
