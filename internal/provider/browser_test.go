package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/localstore"
	"invoicedesk/internal/schema"
)

func storedTree(t *testing.T, storage settings.LocalStorage) map[string]any {
	raw, ok := storage.GetItem(StorageKey)
	require.True(t, ok)
	tree := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	return tree
}

func TestBrowserProviderSeedsDefaults(t *testing.T) {
	storage := localstore.NewMemory()
	p := NewBrowserProvider(storage, nil)
	require.NoError(t, p.Init(context.Background()))

	assert.Equal(t, schema.Defaults(), storedTree(t, storage))
}

func TestBrowserProviderFillsMissingSections(t *testing.T) {
	storage := localstore.NewMemory()
	require.NoError(t, storage.SetItem(StorageKey, `{"ui":{"theme":"dark"}}`))

	p := NewBrowserProvider(storage, nil)
	assert.Equal(t, "dark", p.Get(context.Background(), schema.KeyUITheme))

	tree := storedTree(t, storage)
	assert.Equal(t, map[string]any{"theme": "dark"}, tree["ui"])
	assert.Contains(t, tree, schema.SectionApplication)
}

func TestBrowserProviderCorruptBlob(t *testing.T) {
	storage := localstore.NewMemory()
	require.NoError(t, storage.SetItem(StorageKey, `{"ui":`))

	p := NewBrowserProvider(storage, nil)
	assert.Equal(t, "light", p.Get(context.Background(), schema.KeyUITheme))
	assert.Equal(t, schema.Defaults(), storedTree(t, storage))
}

func TestBrowserProviderWriteFailureLeavesTree(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	p := NewBrowserProvider(storage, nil)
	require.NoError(t, p.Set(ctx, schema.KeyUITheme, "dark"))

	storage.FailWrites(errors.New("QuotaExceededError"))

	err := p.Set(ctx, schema.KeyUITheme, "system")
	assert.ErrorIs(t, err, settings.ErrStorage)
	assert.Equal(t, "dark", p.Get(ctx, schema.KeyUITheme))

	assert.ErrorIs(t, p.Reset(ctx, schema.SectionUI), settings.ErrStorage)
	assert.Equal(t, "dark", p.Get(ctx, schema.KeyUITheme))
}

func TestBrowserProviderSeedFailureStillServesDefaults(t *testing.T) {
	storage := localstore.NewMemory()
	storage.FailWrites(errors.New("storage disabled"))

	p := NewBrowserProvider(storage, nil)
	require.NoError(t, p.Init(context.Background()))
	assert.Equal(t, "classic_blue", p.Get(context.Background(), schema.KeySelectedTemplate))
}

func TestBrowserProviderReload(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	p := NewBrowserProvider(storage, nil)
	require.NoError(t, p.Init(ctx))

	var kinds []settings.ChangeKind
	p.Watch(func(e settings.ChangeEvent) { kinds = append(kinds, e.Kind) })

	assert.False(t, p.Reload(ctx))

	tree := storedTree(t, storage)
	tree["ui"].(map[string]any)["theme"] = "dark"
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(StorageKey, string(data)))

	assert.True(t, p.Reload(ctx))
	assert.Equal(t, "dark", p.Get(ctx, schema.KeyUITheme))
	assert.Equal(t, []settings.ChangeKind{settings.ChangeReload}, kinds)

	require.NoError(t, storage.SetItem(StorageKey, "garbage"))
	assert.False(t, p.Reload(ctx))
	assert.Equal(t, "dark", p.Get(ctx, schema.KeyUITheme))
}
