package transport

import "time"

// Transport layer types for Wails API

// Events emitted to the frontend
const (
	EventSettingChanged   = "settings:changed"
	EventTemplateChanged  = "settings:template-changed"
	EventThemeChanged     = "settings:theme-changed"
	EventSettingsReset    = "settings:reset"
	EventSettingsImported = "settings:imported"
	EventSettingsReloaded = "settings:reloaded"
)

// EmitFunc delivers a named event to the frontend.
type EmitFunc func(name string, data ...any)

type SettingsStatus struct {
	Backend        string `json:"backend"`
	MigrationState string `json:"migration_state"`
	DataDir        string `json:"data_dir"`
}

type FileTransferResult struct {
	Path      string    `json:"path,omitempty"`
	Cancelled bool      `json:"cancelled"`
	Timestamp time.Time `json:"timestamp"`
}

// Dialog interface for system dialogs
type DialogHandler interface {
	OpenConfigurationFile() (string, error)
	SaveConfigurationFile(filename string) (string, error)
}
