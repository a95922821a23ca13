package hoststore

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/models"
)

// Journal persists legacy migration reports to migration_records.
type Journal struct {
	db *gorm.DB
}

// NewJournal creates a new migration journal
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Record(ctx context.Context, report settings.MigrationReport) error {
	migrated, err := json.Marshal(report.Migrated)
	if err != nil {
		return err
	}
	failed, err := json.Marshal(report.Failed)
	if err != nil {
		return err
	}
	removed, err := json.Marshal(report.Removed)
	if err != nil {
		return err
	}

	return j.db.WithContext(ctx).Create(&models.MigrationRecord{
		RunID:       report.RunID,
		StartedAt:   report.StartedAt,
		CompletedAt: report.CompletedAt,
		Migrated:    string(migrated),
		Failed:      string(failed),
		Removed:     string(removed),
		Succeeded:   report.Succeeded(),
	}).Error
}

// Latest returns the most recent migration record, if any
func (j *Journal) Latest(ctx context.Context) (*models.MigrationRecord, error) {
	var record models.MigrationRecord
	err := j.db.WithContext(ctx).Order("id desc").Limit(1).Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}
