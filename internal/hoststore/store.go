// Package hoststore is the host-process settings store: a gorm/sqlite backed
// key-value table holding one JSON document per top-level settings section.
package hoststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/models"
	"invoicedesk/internal/schema"
)

// Store implements settings.HostBridge on top of gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new host settings store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ready reports whether the database answers.
func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return settings.ErrBridgeUnavailable
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", settings.ErrBridgeUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", settings.ErrBridgeUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, keyPath string) (any, bool, error) {
	parts, err := schema.SplitKeyPath(keyPath)
	if err != nil {
		return nil, false, err
	}

	entry, found, err := s.loadSection(s.db.WithContext(ctx), parts[0])
	if err != nil {
		return nil, false, settings.NewStorageError("get", keyPath, err)
	}
	if !found {
		return nil, false, nil
	}

	if len(parts) == 1 {
		var v any
		if err := json.Unmarshal([]byte(entry.Value), &v); err != nil {
			return nil, false, settings.NewStorageError("get", keyPath, err)
		}
		return v, true, nil
	}

	res := gjson.Get(entry.Value, schema.JSONPath(parts[1:]))
	if !res.Exists() {
		return nil, false, nil
	}
	return res.Value(), true, nil
}

func (s *Store) Set(ctx context.Context, keyPath string, value any) error {
	parts, err := schema.SplitKeyPath(keyPath)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, found, err := s.loadSection(tx, parts[0])
		if err != nil {
			return err
		}

		var doc string
		if len(parts) == 1 {
			data, err := json.Marshal(value)
			if err != nil {
				return err
			}
			doc = string(data)
		} else {
			base := entry.Value
			if !found || !gjson.Valid(base) || !gjson.Parse(base).IsObject() {
				base = "{}"
			}
			doc, err = sjson.Set(base, schema.WritePath(parts[1:]), value)
			if err != nil {
				return err
			}
		}

		entry.Key = parts[0]
		entry.Value = doc
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	})
	if err != nil {
		return settings.NewStorageError("set", keyPath, err)
	}
	return nil
}

// Export returns every stored section.
func (s *Store) Export(ctx context.Context) (map[string]any, error) {
	var entries []models.SettingEntry
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, settings.NewStorageError("export", "", err)
	}

	tree := make(map[string]any, len(entries))
	for _, e := range entries {
		var v any
		if err := json.Unmarshal([]byte(e.Value), &v); err != nil {
			return nil, settings.NewStorageError("export", e.Key, err)
		}
		tree[e.Key] = v
	}
	return tree, nil
}

// Import replaces every stored section with the sections of tree.
func (s *Store) Import(ctx context.Context, tree map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SettingEntry{}).Error; err != nil {
			return err
		}
		for section, value := range tree {
			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode section %s: %w", section, err)
			}
			if err := tx.Create(&models.SettingEntry{Key: section, Value: string(data)}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return settings.NewStorageError("import", "", err)
	}
	return nil
}

func (s *Store) loadSection(tx *gorm.DB, section string) (models.SettingEntry, bool, error) {
	var entry models.SettingEntry
	err := tx.First(&entry, "key = ?", section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SettingEntry{}, false, nil
	}
	if err != nil {
		return models.SettingEntry{}, false, err
	}
	return entry, true, nil
}
