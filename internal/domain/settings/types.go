package settings

import (
	"context"
	"time"
)

// Backend identifies which storage backend a provider persists to.
type Backend string

const (
	BackendHost    Backend = "host"
	BackendBrowser Backend = "browser"
)

// ChangeKind classifies a ChangeEvent.
type ChangeKind string

const (
	ChangeSet    ChangeKind = "set"
	ChangeReset  ChangeKind = "reset"
	ChangeImport ChangeKind = "import"
	ChangeReload ChangeKind = "reload"
)

// SectionAll names a reset of the whole tree.
const SectionAll = "all"

// ChangeEvent is broadcast after every successful mutation of the settings tree.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	KeyPath   string     `json:"keyPath,omitempty"`
	Section   string     `json:"section,omitempty"`
	Value     any        `json:"value,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Provider is a storage backend for the nested settings tree.
//
// A nil error from a mutating call means the write was persisted. Reads never
// fail: they fall back to the schema default (or nil) and log the cause.
type Provider interface {
	Kind() Backend
	Init(ctx context.Context) error

	Get(ctx context.Context, keyPath string) any
	Set(ctx context.Context, keyPath string, value any) error
	Reset(ctx context.Context, section string) error
	Has(ctx context.Context, keyPath string) bool

	Export(ctx context.Context) (map[string]any, error)
	Import(ctx context.Context, tree map[string]any) error

	// Subscribe registers fn for writes to exactly keyPath.
	Subscribe(keyPath string, fn func(value any, keyPath string)) (unsubscribe func())
	// Watch registers fn for every change event.
	Watch(fn func(ChangeEvent)) (unsubscribe func())
}

// HostBridge is the privileged persistent key-value store owned by the host
// process. Key paths are dot separated; the first segment names a section.
type HostBridge interface {
	Ready(ctx context.Context) error
	Get(ctx context.Context, keyPath string) (value any, found bool, err error)
	Set(ctx context.Context, keyPath string, value any) error
	Export(ctx context.Context) (map[string]any, error)
	Import(ctx context.Context, tree map[string]any) error
}

// LocalStorage is a synchronous string key-value store.
type LocalStorage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Keys() []string
}

// CompanyRecords persists per-company invoice prefixes (company initials).
type CompanyRecords interface {
	GetCompanyInvoicePrefix(ctx context.Context, companyID string) (string, error)
	SetCompanyInvoicePrefix(ctx context.Context, companyID, prefix string) error
}

// MigrationReport summarises one legacy-key migration run.
type MigrationReport struct {
	RunID       string            `json:"runId"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt time.Time         `json:"completedAt"`
	Migrated    []string          `json:"migrated"`
	Failed      map[string]string `json:"failed,omitempty"`
	Removed     []string          `json:"removed"`
}

// Succeeded reports whether every present legacy key was migrated.
func (r MigrationReport) Succeeded() bool {
	return len(r.Failed) == 0
}

// MigrationJournal records migration runs for later diagnosis.
type MigrationJournal interface {
	Record(ctx context.Context, report MigrationReport) error
}
