package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

// StorageKey is the local storage key holding the whole settings tree.
const StorageKey = "invoice_app_settings"

// BrowserProvider keeps the settings tree as one JSON document in memory and
// mirrors it to local storage after every write.
type BrowserProvider struct {
	*notifier

	storage settings.LocalStorage
	logger  *slog.Logger

	mu          sync.RWMutex
	doc         string
	initialized bool
}

// NewBrowserProvider creates a provider over storage
func NewBrowserProvider(storage settings.LocalStorage, logger *slog.Logger) *BrowserProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserProvider{
		notifier: newNotifier(logger),
		storage:  storage,
		logger:   logger,
	}
}

func (p *BrowserProvider) Kind() settings.Backend {
	return settings.BackendBrowser
}

// Init loads the stored tree, seeding defaults when it has no application
// section. A failed seed write is logged; the tree stays usable in memory.
func (p *BrowserProvider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initLocked()
	return nil
}

func (p *BrowserProvider) initLocked() {
	if p.initialized {
		return
	}
	p.initialized = true

	raw, ok := p.storage.GetItem(StorageKey)
	if ok && !isObject(raw) {
		p.logger.Warn("Stored settings are not a JSON object, reseeding defaults", "key", StorageKey)
		ok = false
	}
	if !ok {
		raw = "{}"
	}
	if gjson.Get(raw, schema.SectionApplication).Exists() {
		p.doc = raw
		return
	}

	doc := raw
	for section, def := range schema.Defaults() {
		if gjson.Get(doc, schema.JSONPath([]string{section})).Exists() {
			continue
		}
		next, err := sjson.Set(doc, schema.JSONPath([]string{section}), def)
		if err != nil {
			p.logger.Error("Failed to seed default section", "section", section, "error", err)
			continue
		}
		doc = next
	}
	p.doc = doc

	if err := p.storage.SetItem(StorageKey, doc); err != nil {
		logStorageFailure(p.logger, "init", "", err)
		return
	}
	p.logger.Info("Seeded default settings", "backend", settings.BackendBrowser)
}

func (p *BrowserProvider) ensure() {
	p.mu.RLock()
	done := p.initialized
	p.mu.RUnlock()
	if !done {
		p.mu.Lock()
		p.initLocked()
		p.mu.Unlock()
	}
}

// Get returns the stored value, the schema default, or nil.
func (p *BrowserProvider) Get(ctx context.Context, keyPath string) any {
	parts, err := schema.SplitKeyPath(keyPath)
	if err != nil {
		p.logger.Warn("Invalid settings key path", "key", keyPath, "error", err)
		return nil
	}
	p.ensure()

	p.mu.RLock()
	res := gjson.Get(p.doc, schema.JSONPath(parts))
	p.mu.RUnlock()

	if !res.Exists() {
		return defaultValue(keyPath)
	}
	return res.Value()
}

func (p *BrowserProvider) Set(ctx context.Context, keyPath string, value any) error {
	normalized, err := prepareWrite(keyPath, value)
	if err != nil {
		p.logger.Warn("Rejected setting write", "key", keyPath, "error", err)
		return err
	}
	parts, _ := schema.SplitKeyPath(keyPath)
	p.ensure()

	p.mu.Lock()
	next, err := sjson.Set(p.doc, schema.WritePath(parts), normalized)
	if err == nil {
		err = p.persistLocked(next)
	}
	p.mu.Unlock()

	if err != nil {
		logStorageFailure(p.logger, "set", keyPath, err)
		return asStorageError("set", keyPath, err)
	}

	p.written(keyPath, normalized)
	return nil
}

func (p *BrowserProvider) Reset(ctx context.Context, section string) error {
	target, err := resetTarget(section)
	if err != nil {
		return err
	}
	p.ensure()

	p.mu.Lock()
	var next string
	if target == settings.SectionAll {
		next, err = marshalTree(schema.Defaults())
	} else {
		def, _ := schema.DefaultSection(target)
		next, err = sjson.Set(p.doc, schema.JSONPath([]string{target}), def)
	}
	if err == nil {
		err = p.persistLocked(next)
	}
	p.mu.Unlock()

	if err != nil {
		logStorageFailure(p.logger, "reset", target, err)
		return asStorageError("reset", target, err)
	}

	p.reset(target)
	return nil
}

func (p *BrowserProvider) Has(ctx context.Context, keyPath string) bool {
	parts, err := schema.SplitKeyPath(keyPath)
	if err != nil {
		return false
	}
	p.ensure()

	p.mu.RLock()
	defer p.mu.RUnlock()
	return gjson.Get(p.doc, schema.JSONPath(parts)).Exists()
}

func (p *BrowserProvider) Export(ctx context.Context) (map[string]any, error) {
	p.ensure()

	p.mu.RLock()
	doc := p.doc
	p.mu.RUnlock()

	tree := map[string]any{}
	if err := json.Unmarshal([]byte(doc), &tree); err != nil {
		return nil, settings.NewStorageError("export", "", err)
	}
	return tree, nil
}

func (p *BrowserProvider) Import(ctx context.Context, tree map[string]any) error {
	normalized, err := prepareImport(tree)
	if err != nil {
		p.logger.Warn("Rejected settings import", "error", err)
		return err
	}
	p.ensure()

	p.mu.Lock()
	next, err := marshalTree(normalized)
	if err == nil {
		err = p.persistLocked(next)
	}
	p.mu.Unlock()

	if err != nil {
		logStorageFailure(p.logger, "import", "", err)
		return asStorageError("import", "", err)
	}

	p.imported()
	return nil
}

// Reload re-reads the tree from local storage after another process changed
// it and reports whether anything changed. Unreadable content is ignored.
func (p *BrowserProvider) Reload(ctx context.Context) bool {
	p.ensure()

	raw, ok := p.storage.GetItem(StorageKey)
	if !ok || !isObject(raw) {
		p.logger.Warn("Ignoring unreadable external settings change", "key", StorageKey)
		return false
	}

	p.mu.Lock()
	changed := raw != p.doc
	if changed {
		p.doc = raw
	}
	p.mu.Unlock()

	if changed {
		p.logger.Info("Reloaded settings after external change")
		p.reloaded()
	}
	return changed
}

// persistLocked writes next to storage and adopts it. Callers hold p.mu.
func (p *BrowserProvider) persistLocked(next string) error {
	if err := p.storage.SetItem(StorageKey, next); err != nil {
		return err
	}
	p.doc = next
	return nil
}

func marshalTree(tree map[string]any) (string, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isObject(raw string) bool {
	return gjson.Valid(raw) && gjson.Parse(raw).IsObject()
}
