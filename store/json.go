package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/models"
)

// JSONStore keeps each category as a JSON array in its own file. Nothing is cached:
// every operation reads the file fresh and writes the whole collection back.
type JSONStore struct {
	*registry
	log *zap.Logger
}

func NewJSONStore(cats []models.Category, log *zap.Logger) *JSONStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONStore{registry: newRegistry(cats), log: log}
}

func (s *JSONStore) List(ctx context.Context, category string) ([]models.Item, error) {
	cat, err := s.Category(category)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readCollection(cat.DataFile)
}

func (s *JSONStore) Append(ctx context.Context, category, filename string) (models.Item, error) {
	cat, err := s.Category(category)
	if err != nil {
		return models.Item{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Item{}, err
	}

	unlock := s.lock(cat.Name)
	defer unlock()

	items, err := readCollection(cat.DataFile)
	if err != nil {
		return models.Item{}, err
	}

	item := models.Item{ID: NextID(items), URL: cat.AssetURL(filename)}
	items = append(items, item)

	if err := writeCollection(cat.DataFile, items); err != nil {
		return models.Item{}, err
	}
	s.log.Debug("item appended",
		zap.String("category", cat.Name),
		zap.String("id", item.ID),
		zap.String("url", item.URL))
	return item, nil
}

func (s *JSONStore) Remove(ctx context.Context, category string, ids []string) error {
	cat, err := s.Category(category)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.lock(cat.Name)
	defer unlock()

	items, readErr := readCollection(cat.DataFile)
	if readErr != nil && !errors.Is(readErr, ErrCorruptStore) {
		return readErr
	}
	if ids == nil {
		return ErrInvalidRequest
	}
	if readErr != nil {
		return readErr
	}

	kept, removed := removeIDs(items, ids)
	if err := writeCollection(cat.DataFile, kept); err != nil {
		return err
	}
	s.log.Debug("items removed",
		zap.String("category", cat.Name),
		zap.Strings("requested", ids),
		zap.Int("removed", removed))
	return nil
}

func readCollection(path string) ([]models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreRead, path, err)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s", ErrCorruptStore, path)
	}

	items := []models.Item{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
	}
	return items, nil
}

// writeCollection replaces path with the indented collection via a temp file and rename.
func writeCollection(path string, items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	_ = syncDir(dir)
	return nil
}

// syncDir makes the rename durable. Some platforms refuse to fsync a directory.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// EnsureFiles creates an empty collection for every category whose file is missing.
func (s *JSONStore) EnsureFiles() error {
	for _, c := range s.order {
		if _, err := os.Stat(c.DataFile); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrStoreRead, err)
		}
		if err := writeCollection(c.DataFile, nil); err != nil {
			return err
		}
		s.log.Info("created empty collection", zap.String("category", c.Name), zap.String("file", c.DataFile))
	}
	return nil
}
