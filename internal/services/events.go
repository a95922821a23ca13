package services

import "time"

// SettingChanged is emitted after any successful key-path write.
type SettingChanged struct {
	KeyPath   string    `json:"keyPath"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// TemplateChanged is emitted when the selected invoice template changes.
type TemplateChanged struct {
	TemplateID string    `json:"templateId"`
	Timestamp  time.Time `json:"timestamp"`
}

// ThemeChanged is emitted when the UI theme changes.
type ThemeChanged struct {
	Theme     string    `json:"theme"`
	Timestamp time.Time `json:"timestamp"`
}

// SettingsReset is emitted after a section (or "all") is reset to defaults.
type SettingsReset struct {
	Section   string    `json:"section"`
	Timestamp time.Time `json:"timestamp"`
}

// SettingsImported is emitted after a whole-tree import.
type SettingsImported struct {
	Timestamp time.Time `json:"timestamp"`
}

// SettingsReloaded is emitted after settings were re-read following an
// external storage change.
type SettingsReloaded struct {
	Timestamp time.Time `json:"timestamp"`
}
