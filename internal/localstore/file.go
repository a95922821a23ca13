// Package localstore provides the synchronous string key-value storage the
// browser-backed settings provider persists to.
package localstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/samber/lo"

	"invoicedesk/internal/common"
)

// FileStorage is a LocalStorage persisted as a single JSON object file.
type FileStorage struct {
	path   string
	logger *slog.Logger

	mu          sync.RWMutex
	items       map[string]string
	lastWritten []byte
	loaded      bool
}

// NewFileStorage opens (or lazily creates) the storage file at path.
func NewFileStorage(path string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStorage{
		path:   path,
		logger: logger,
		items:  map[string]string{},
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := lo.Assign(s.items, map[string]string{key: value})
	if err := s.persist(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	next := lo.OmitByKeys(s.items, []string{key})
	if err := s.persist(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// Keys returns every stored key in sorted order.
func (s *FileStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := lo.Keys(s.items)
	slices.Sort(keys)
	return keys
}

// Reload re-reads the file and reports whether its contents differ from
// what this process last wrote or loaded.
func (s *FileStorage) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		data = nil
	} else if err != nil {
		return false, fmt.Errorf("failed to read local storage %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && bytes.Equal(data, s.lastWritten) {
		return false, nil
	}

	items := map[string]string{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			s.logger.Warn("Local storage file is corrupt, starting empty", "path", s.path, "error", err)
			items = map[string]string{}
		}
	}

	s.items = items
	s.lastWritten = data
	s.loaded = true
	return true, nil
}

// persist writes items atomically. Callers hold s.mu.
func (s *FileStorage) persist(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	if err := common.WriteFileAtomic(s.path, data, common.DefaultFilePermissions); err != nil {
		return err
	}

	s.lastWritten = data
	return nil
}
