package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGetAndSet(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "get", "invoice.templates.selectedTemplate")
	require.NoError(t, err)
	assert.Equal(t, `"classic_blue"`, strings.TrimSpace(out))

	_, err = run(t, dir, "set", "invoice.templates.selectedTemplate", "modern_green")
	require.NoError(t, err)
	_, err = run(t, dir, "set", "ui.zoomLevel", "120")
	require.NoError(t, err)

	out, err = run(t, dir, "get", "invoice.templates.selectedTemplate")
	require.NoError(t, err)
	assert.Equal(t, `"modern_green"`, strings.TrimSpace(out))

	out, err = run(t, dir, "get", "ui.zoomLevel")
	require.NoError(t, err)
	assert.Equal(t, "120", strings.TrimSpace(out))
}

func TestSetRejectsInvalidValue(t *testing.T) {
	_, err := run(t, t.TempDir(), "set", "invoice.defaults.cgstRate", "75")
	assert.Error(t, err)
}

func TestResetSection(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "set", "ui.theme", "dark")
	require.NoError(t, err)

	_, err = run(t, dir, "reset", "ui")
	require.NoError(t, err)

	out, err := run(t, dir, "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, `"light"`, strings.TrimSpace(out))
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "settings.json")

	_, err := run(t, dir, "set", "ui.theme", "dark")
	require.NoError(t, err)
	_, err = run(t, dir, "export", "-o", file)
	require.NoError(t, err)

	var exported map[string]any
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, "1.0", exported["version"])

	_, err = run(t, dir, "reset")
	require.NoError(t, err)
	_, err = run(t, dir, "import", file)
	require.NoError(t, err)

	out, err := run(t, dir, "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, strings.TrimSpace(out))
}

func TestRawExportImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "tree.json")

	_, err := run(t, dir, "set", "invoice.defaults.currency", "EUR")
	require.NoError(t, err)
	_, err = run(t, dir, "export", "--raw", "-o", file)
	require.NoError(t, err)

	_, err = run(t, dir, "reset")
	require.NoError(t, err)
	_, err = run(t, dir, "import", "--raw", file)
	require.NoError(t, err)

	out, err := run(t, dir, "get", "invoice.defaults.currency")
	require.NoError(t, err)
	assert.Equal(t, `"EUR"`, strings.TrimSpace(out))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"unknown":{}}`), 0644))
	_, err = run(t, dir, "import", "--raw", bad)
	assert.Error(t, err)
}

func TestCompanyPrefix(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "company", "add", "Acme Traders", "--prefix", "AT")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	_, err = run(t, dir, "company", "set-prefix", id, "ACM")
	require.NoError(t, err)

	out, err = run(t, dir, "company", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ACM")
	assert.Contains(t, out, "Acme Traders")
}

func TestMigrateAndPaths(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, `"runId"`)

	out, err = run(t, dir, "paths")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, "Backend:        host")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, "42", parseValue("company.defaultCompanyId", "42", false))
	assert.Equal(t, "acme", parseValue("company.defaultCompanyId", `"acme"`, false))
	assert.Equal(t, 120.0, parseValue("ui.zoomLevel", "120", false))
	assert.Equal(t, true, parseValue("ui.sidebarCollapsed", "true", false))
	assert.Equal(t, "plain text", parseValue("ui.custom", "plain text", false))
	assert.Equal(t, "007", parseValue("ui.custom", "007", true))
}

func TestSetKeepsNumericLookingStrings(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "set", "company.defaultCompanyId", "42")
	require.NoError(t, err)
	out, err := run(t, dir, "get", "company.defaultCompanyId")
	require.NoError(t, err)
	assert.Equal(t, `"42"`, strings.TrimSpace(out))

	_, err = run(t, dir, "set", "--string", "ui.accountCode", "007")
	require.NoError(t, err)
	out, err = run(t, dir, "get", "ui.accountCode")
	require.NoError(t, err)
	assert.Equal(t, `"007"`, strings.TrimSpace(out))
}
