package application

import (
	"context"

	"gorm.io/gorm"

	"invoicedesk/internal/config"
	"invoicedesk/internal/container"
	"invoicedesk/internal/database"
	"invoicedesk/internal/transport"
)

type App struct {
	ctx         context.Context
	config      *config.Config
	db          *gorm.DB
	container   *container.Container
	settingsAPI *transport.SettingsAPI
	stopForward func()
}

func NewApp() *App {
	return &App{}
}

func (a *App) OnStartup(ctx context.Context) {
	// Initialize configuration
	cfg := config.New()

	if err := a.start(ctx, cfg, transport.WailsEmitter(ctx), transport.NewDialogsHandler(ctx)); err != nil {
		cfg.Logger.Error("Failed to start application", "error", err)
		return
	}

	cfg.Logger.Info("Wails app initialized successfully")
}

func (a *App) start(ctx context.Context, cfg *config.Config, emit transport.EmitFunc, dialogs transport.DialogHandler) error {
	a.ctx = ctx
	a.config = cfg

	startCtx, cancel := context.WithTimeout(ctx, StartupTimeout)
	defer cancel()

	// Initialize database; without it settings fall back to local storage
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Error("Failed to initialize database", "path", cfg.DatabasePath, "error", err)
		db = nil
	}
	a.db = db

	// Initialize dependency container
	c, err := container.New(startCtx, cfg, db)
	if err != nil {
		return NewStartupError("container", err)
	}
	a.container = c

	service := c.GetConfigurationService()
	manager := c.GetConfigurationManager()
	a.stopForward = transport.ForwardEvents(service, emit)

	// One-time move of flat pre-release keys into the settings tree
	manager.MigrateLegacySettings(startCtx)

	if err := c.StartWatcher(ctx); err != nil {
		cfg.Logger.Warn("Failed to watch local storage", "path", cfg.LocalStoragePath, "error", err)
	}

	// Initialize transport layer
	a.settingsAPI = transport.NewSettingsAPI(ctx, service, manager, dialogs, cfg.DataDir, cfg.Logger)

	cfg.Logger.Info("Application configuration",
		"data_dir", cfg.DataDir,
		"database_path", cfg.DatabasePath,
		"database_available", db != nil)
	return nil
}

func (a *App) OnShutdown(ctx context.Context) {
	if a.stopForward != nil {
		a.stopForward()
	}
	if a.container != nil {
		a.container.Close()
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.config.Logger.Error("Failed to close database", "error", err)
		}
	}
}

func (a *App) GetSetting(keyPath string) any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetSetting(keyPath)
}

func (a *App) SetSetting(keyPath string, value any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.SetSetting(keyPath, value)
}

func (a *App) HasSetting(keyPath string) bool {
	if a.settingsAPI == nil {
		return false
	}
	return a.settingsAPI.HasSetting(keyPath)
}

func (a *App) ResetSettings(section string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.ResetSettings(section)
}

func (a *App) ExportSettings() (map[string]any, error) {
	if a.settingsAPI == nil {
		return nil, ErrNotStarted
	}
	return a.settingsAPI.ExportSettings()
}

func (a *App) ImportSettings(tree map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.ImportSettings(tree)
}

func (a *App) GetSelectedTemplate() string {
	if a.settingsAPI == nil {
		return ""
	}
	return a.settingsAPI.GetSelectedTemplate()
}

func (a *App) SetSelectedTemplate(templateID string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.SetSelectedTemplate(templateID)
}

func (a *App) GetTemplateSettings() map[string]any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetTemplateSettings()
}

func (a *App) UpdateTemplateSettings(partial map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.UpdateTemplateSettings(partial)
}

func (a *App) GetTemplateCustomization(templateID string) map[string]any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetTemplateCustomization(templateID)
}

func (a *App) UpdateTemplateCustomization(templateID string, partial map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.UpdateTemplateCustomization(templateID, partial)
}

func (a *App) ResetTemplateCustomization(templateID string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.ResetTemplateCustomization(templateID)
}

func (a *App) GetTheme() string {
	if a.settingsAPI == nil {
		return ""
	}
	return a.settingsAPI.GetTheme()
}

func (a *App) SetTheme(theme string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.SetTheme(theme)
}

func (a *App) GetUIPreferences() map[string]any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetUIPreferences()
}

func (a *App) UpdateUIPreferences(partial map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.UpdateUIPreferences(partial)
}

func (a *App) GetInvoiceDefaults() map[string]any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetInvoiceDefaults()
}

func (a *App) UpdateInvoiceDefaults(partial map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.UpdateInvoiceDefaults(partial)
}

func (a *App) GetTallySettings() map[string]any {
	if a.settingsAPI == nil {
		return nil
	}
	return a.settingsAPI.GetTallySettings()
}

func (a *App) UpdateTallySettings(partial map[string]any) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.UpdateTallySettings(partial)
}

func (a *App) GetDefaultCompanyID() string {
	if a.settingsAPI == nil {
		return ""
	}
	return a.settingsAPI.GetDefaultCompanyID()
}

func (a *App) SetDefaultCompanyID(companyID string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.SetDefaultCompanyID(companyID)
}

func (a *App) GetCompanyInitials(companyID string) string {
	if a.settingsAPI == nil {
		return ""
	}
	return a.settingsAPI.GetCompanyInitials(companyID)
}

func (a *App) SetCompanyInitials(companyID, initials string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.SetCompanyInitials(companyID, initials)
}

func (a *App) ExportConfiguration() (string, error) {
	if a.settingsAPI == nil {
		return "", ErrNotStarted
	}
	return a.settingsAPI.ExportConfiguration()
}

func (a *App) ImportConfiguration(data string) error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.ImportConfiguration(data)
}

func (a *App) ExportConfigurationToFile() (transport.FileTransferResult, error) {
	if a.settingsAPI == nil {
		return transport.FileTransferResult{}, ErrNotStarted
	}
	return a.settingsAPI.ExportConfigurationToFile()
}

func (a *App) ImportConfigurationFromFile() (transport.FileTransferResult, error) {
	if a.settingsAPI == nil {
		return transport.FileTransferResult{}, ErrNotStarted
	}
	return a.settingsAPI.ImportConfigurationFromFile()
}

func (a *App) ResetToDefaults() error {
	if a.settingsAPI == nil {
		return ErrNotStarted
	}
	return a.settingsAPI.ResetToDefaults()
}

func (a *App) GetAppStatus() transport.SettingsStatus {
	if a.settingsAPI == nil {
		return transport.SettingsStatus{}
	}
	return a.settingsAPI.GetStatus()
}
