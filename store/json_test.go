package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sidhant-sriv/gallery-api/models"
)

func testCategories(dir string) []models.Category {
	return []models.Category{
		{
			Name:           "bw1",
			DataFile:       filepath.Join(dir, "bw1.json"),
			AssetDir:       filepath.Join(dir, "assets", "bw1"),
			AssetURLPrefix: "public/assets/gallery/bw1/sheets",
			PublicPath:     "/bw/bw1",
			DashboardPath:  "/dashboard/bw/bw1",
		},
		{
			Name:           "color",
			DataFile:       filepath.Join(dir, "color.json"),
			AssetDir:       filepath.Join(dir, "assets", "color"),
			AssetURLPrefix: "public/assets/gallery/color/sheets",
			PublicPath:     "/color",
			DashboardPath:  "/dashboard/color",
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func seed(t *testing.T, path string, items []models.Item) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	writeFile(t, path, string(data))
}

func newJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewJSONStore(testCategories(dir), nil), dir
}

func TestJSONStore_AppendAssignsNextID(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "bw1.json"), []models.Item{
		{ID: "1", URL: "a.jpg"},
		{ID: "2", URL: "b.jpg"},
	})

	item, err := s.Append(context.Background(), "bw1", "x.png")
	require.NoError(t, err)
	assert.Equal(t, models.Item{ID: "3", URL: "public/assets/gallery/bw1/sheets/x.png"}, item)

	items, err := s.List(context.Background(), "bw1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, item, items[2])
}

func TestJSONStore_AppendToEmptyCollection(t *testing.T) {
	s, dir := newJSONStore(t)
	writeFile(t, filepath.Join(dir, "color.json"), "[]")

	item, err := s.Append(context.Background(), "color", "first.jpg")
	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)
}

func TestJSONStore_AppendUsesMaximumNotLength(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "bw1.json"), []models.Item{
		{ID: "7", URL: "a.jpg"},
		{ID: "3", URL: "b.jpg"},
	})

	item, err := s.Append(context.Background(), "bw1", "c.jpg")
	require.NoError(t, err)
	assert.Equal(t, "8", item.ID)
}

func TestJSONStore_AppendReusesRemovedMaximum(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "bw1.json"), []models.Item{
		{ID: "1", URL: "a.jpg"},
		{ID: "2", URL: "b.jpg"},
	})
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "bw1", []string{"2"}))
	item, err := s.Append(ctx, "bw1", "c.jpg")
	require.NoError(t, err)
	assert.Equal(t, "2", item.ID)
}

func TestJSONStore_WritesIndentedArray(t *testing.T) {
	s, dir := newJSONStore(t)
	path := filepath.Join(dir, "color.json")
	writeFile(t, path, "[]")

	_, err := s.Append(context.Background(), "color", "a.jpg")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"1\",\n    \"url\": \"public/assets/gallery/color/sheets/a.jpg\"\n  }\n]", string(raw))
}

func TestJSONStore_RemoveKeepsOrder(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "bw1.json"), []models.Item{
		{ID: "1", URL: "a.jpg"},
		{ID: "2", URL: "b.jpg"},
		{ID: "3", URL: "c.jpg"},
		{ID: "4", URL: "d.jpg"},
	})
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "bw1", []string{"3", "1", "99"}))

	items, err := s.List(ctx, "bw1")
	require.NoError(t, err)
	want := []models.Item{{ID: "2", URL: "b.jpg"}, {ID: "4", URL: "d.jpg"}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONStore_RemoveLastItem(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "color.json"), []models.Item{{ID: "5", URL: "c.jpg"}})

	require.NoError(t, s.Remove(context.Background(), "color", []string{"5"}))

	raw, err := os.ReadFile(filepath.Join(dir, "color.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestJSONStore_RemoveUnknownIDsIsNoop(t *testing.T) {
	s, dir := newJSONStore(t)
	before := []models.Item{{ID: "1", URL: "a.jpg"}, {ID: "2", URL: "b.jpg"}}
	seed(t, filepath.Join(dir, "bw1.json"), before)

	require.NoError(t, s.Remove(context.Background(), "bw1", []string{"42", "abc"}))

	items, err := s.List(context.Background(), "bw1")
	require.NoError(t, err)
	assert.Equal(t, before, items)
}

func TestJSONStore_RemoveRejectsScalar(t *testing.T) {
	s, dir := newJSONStore(t)
	path := filepath.Join(dir, "bw1.json")
	writeFile(t, path, `[{"id":"1","url":"a.jpg"}]`)

	err := s.Remove(context.Background(), "bw1", nil)
	require.ErrorIs(t, err, ErrInvalidRequest)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1","url":"a.jpg"}]`, string(raw))
}

func TestJSONStore_RoundTrip(t *testing.T) {
	s, dir := newJSONStore(t)
	before := []models.Item{{ID: "1", URL: "a.jpg"}, {ID: "4", URL: "b.jpg"}}
	seed(t, filepath.Join(dir, "bw1.json"), before)
	ctx := context.Background()

	item, err := s.Append(ctx, "bw1", "new.jpg")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "bw1", []string{item.ID}))

	items, err := s.List(ctx, "bw1")
	require.NoError(t, err)
	if diff := cmp.Diff(before, items); diff != "" {
		t.Errorf("round trip changed collection (-want +got):\n%s", diff)
	}
}

func TestJSONStore_ReadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		s, _ := newJSONStore(t)
		_, err := s.List(ctx, "bw1")
		assert.ErrorIs(t, err, ErrStoreRead)
	})

	t.Run("invalid json", func(t *testing.T) {
		s, dir := newJSONStore(t)
		writeFile(t, filepath.Join(dir, "bw1.json"), "[{")
		_, err := s.List(ctx, "bw1")
		assert.ErrorIs(t, err, ErrStoreRead)
	})

	t.Run("append leaves file untouched on read failure", func(t *testing.T) {
		s, dir := newJSONStore(t)
		path := filepath.Join(dir, "bw1.json")
		writeFile(t, path, "not json")
		_, err := s.Append(ctx, "bw1", "x.png")
		require.ErrorIs(t, err, ErrStoreRead)
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "not json", string(raw))
	})

	t.Run("unknown category", func(t *testing.T) {
		s, _ := newJSONStore(t)
		_, err := s.List(ctx, "sepia")
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestJSONStore_CorruptStore(t *testing.T) {
	s, dir := newJSONStore(t)
	path := filepath.Join(dir, "bw1.json")
	writeFile(t, path, `{"id":"1","url":"a.jpg"}`)
	ctx := context.Background()

	err := s.Remove(ctx, "bw1", []string{"1"})
	assert.ErrorIs(t, err, ErrCorruptStore)

	_, err = s.List(ctx, "bw1")
	assert.ErrorIs(t, err, ErrCorruptStore)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1","url":"a.jpg"}`, string(raw))
}

func TestJSONStore_WriteError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	s, dir := newJSONStore(t)
	writeFile(t, filepath.Join(dir, "bw1.json"), "[]")
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := s.Append(context.Background(), "bw1", "x.png")
	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestJSONStore_ConcurrentAppendsGetUniqueIDs(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, dir := newJSONStore(t)
	writeFile(t, filepath.Join(dir, "bw1.json"), "[]")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Append(context.Background(), "bw1", "img"+strconv.Itoa(i)+".jpg")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := s.List(context.Background(), "bw1")
	require.NoError(t, err)
	require.Len(t, items, n)
	seen := make(map[string]bool)
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
	assert.True(t, seen[strconv.Itoa(n)])
}

func TestJSONStore_EnsureFiles(t *testing.T) {
	s, dir := newJSONStore(t)
	seed(t, filepath.Join(dir, "bw1.json"), []models.Item{{ID: "1", URL: "a.jpg"}})

	require.NoError(t, s.EnsureFiles())

	items, err := s.List(context.Background(), "color")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.List(context.Background(), "bw1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestJSONStore_CanceledContext(t *testing.T) {
	s, dir := newJSONStore(t)
	writeFile(t, filepath.Join(dir, "bw1.json"), "[]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Append(ctx, "bw1", "x.png")
	assert.ErrorIs(t, err, context.Canceled)
}
