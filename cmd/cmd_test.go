package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sidhant-sriv/gallery-api/config"
	"github.com/sidhant-sriv/gallery-api/models"
	"github.com/sidhant-sriv/gallery-api/store"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// setupEnv points the configuration at a temp tree with every default collection present.
func setupEnv(t *testing.T) (dataDir, publicDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	publicDir = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for _, c := range config.DefaultCategories() {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, c.DataFile), []byte("[]"), 0o644))
	}
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("PUBLIC_DIR", publicDir)
	t.Setenv("STORE_BACKEND", "json")
	t.Setenv("LOG_LEVEL", "error")
	return dataDir, publicDir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestItemsCommands(t *testing.T) {
	dataDir, publicDir := setupEnv(t)
	img := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o644))

	out, err := run(t, "", "items", "add", "bw1", img)
	require.NoError(t, err)
	assert.Contains(t, out, "added 1 public/assets/gallery/bw1/sheets/")

	entries, err := os.ReadDir(filepath.Join(publicDir, "assets", "gallery", "bw1", "sheets"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = run(t, "", "items", "list", "bw1", "--json")
	require.NoError(t, err)
	var items []models.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)

	_, err = run(t, "", "items", "remove", "bw1", "1")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dataDir, "bw1.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestItemsAddRejectsReadOnlyCategory(t *testing.T) {
	setupEnv(t)
	img := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o644))

	_, err := run(t, "", "items", "add", "shop", img)
	assert.ErrorContains(t, err, "read-only")
}

func TestItemsAddDiscardsAssetWhenAppendFails(t *testing.T) {
	dataDir, publicDir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "color.json"), []byte("nope"), 0o644))
	img := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o644))

	_, err := run(t, "", "items", "add", "color", img)
	require.ErrorIs(t, err, store.ErrStoreRead)

	entries, err := os.ReadDir(filepath.Join(publicDir, "assets", "gallery", "color", "sheets"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckCommand(t *testing.T) {
	dataDir, _ := setupEnv(t)

	out, err := run(t, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   bw1")

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "events.json"), []byte(`{"id":"1"}`), 0o644))
	out, err = run(t, "", "check")
	assert.ErrorContains(t, err, "1 of 5 categories failed")
	assert.Contains(t, out, "FAIL events")
}

func TestCheckAllStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	s := store.NewJSONStore([]models.Category{{Name: "bw1", DataFile: filepath.Join(dir, "bw1.json")}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := checkAll(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := run(t, "hunter2\n", "hash-password")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	out, err = run(t, "", "hash-password", "opensesame")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("opensesame")))
}

func TestImportNeedsDatabase(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "import")
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestImportIntoSQLite(t *testing.T) {
	dataDir, _ := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "color.json"), []byte(`[{"id":"4","url":"a.jpg"}]`), 0o644))
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dataDir, "gallery.db"))

	out, err := run(t, "", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 item(s)")

	out, err = run(t, "", "items", "list", "color", "--json")
	require.NoError(t, err)
	var items []models.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, []models.Item{{ID: "4", URL: "a.jpg"}}, items)
}
