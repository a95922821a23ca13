package models

import (
	"time"
)

// SettingEntry stores one top-level settings section as a JSON document
type SettingEntry struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by the host settings store
func (SettingEntry) TableName() string {
	return "settings_entries"
}

// Company holds the company-record fields the settings core reads and writes
type Company struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `json:"name"`
	InvoicePrefix string    `json:"invoice_prefix"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MigrationRecord is a diagnostic journal entry for one legacy-key migration run
type MigrationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       string    `gorm:"index" json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Migrated    string    `gorm:"type:text" json:"migrated"`
	Failed      string    `gorm:"type:text" json:"failed"`
	Removed     string    `gorm:"type:text" json:"removed"`
	Succeeded   bool      `json:"succeeded"`
}

// All lists every model auto-migrated at startup
func All() []any {
	return []any{&SettingEntry{}, &Company{}, &MigrationRecord{}}
}
