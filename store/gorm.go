package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sidhant-sriv/gallery-api/models"
)

// DBStore keeps the collections in the gallery_items table. Each operation is one
// transaction and also holds the category lock so a single process never races itself.
type DBStore struct {
	*registry
	db  *gorm.DB
	log *zap.Logger
}

func NewDBStore(conn *gorm.DB, cats []models.Category, log *zap.Logger) *DBStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &DBStore{registry: newRegistry(cats), db: conn, log: log}
}

func (s *DBStore) List(ctx context.Context, category string) ([]models.Item, error) {
	cat, err := s.Category(category)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(s.db.WithContext(ctx), cat.Name, false)
	if err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

func (s *DBStore) Append(ctx context.Context, category, filename string) (models.Item, error) {
	cat, err := s.Category(category)
	if err != nil {
		return models.Item{}, err
	}

	unlock := s.lock(cat.Name)
	defer unlock()

	var item models.Item
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.rows(tx, cat.Name, true)
		if err != nil {
			return err
		}
		item = models.Item{ID: NextID(toItems(rows)), URL: cat.AssetURL(filename)}
		rec := models.ItemRecord{Category: cat.Name, ItemID: item.ID, URL: item.URL}
		if result := tx.Create(&rec); result.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreWrite, result.Error)
		}
		return nil
	})
	if err != nil {
		return models.Item{}, asWriteError(err)
	}
	s.log.Debug("item appended",
		zap.String("category", cat.Name),
		zap.String("id", item.ID),
		zap.String("url", item.URL))
	return item, nil
}

func (s *DBStore) Remove(ctx context.Context, category string, ids []string) error {
	cat, err := s.Category(category)
	if err != nil {
		return err
	}

	unlock := s.lock(cat.Name)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.rows(tx, cat.Name, true)
		if err != nil {
			return err
		}
		if ids == nil {
			return ErrInvalidRequest
		}

		var pks []uint
		remaining := rows
		for _, id := range ids {
			for i, r := range remaining {
				if r.ItemID == id {
					pks = append(pks, r.ID)
					remaining = append(remaining[:i:i], remaining[i+1:]...)
					break
				}
			}
		}
		if len(pks) == 0 {
			return nil
		}
		if result := tx.Delete(&models.ItemRecord{}, pks); result.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreWrite, result.Error)
		}
		return nil
	})
	if err != nil {
		return asWriteError(err)
	}
	s.log.Debug("items removed", zap.String("category", cat.Name), zap.Strings("requested", ids))
	return nil
}

// Seed copies items into an empty category, keeping their ids and order. It
// reports false when the category already holds rows.
func (s *DBStore) Seed(ctx context.Context, category string, items []models.Item) (bool, error) {
	cat, err := s.Category(category)
	if err != nil {
		return false, err
	}

	unlock := s.lock(cat.Name)
	defer unlock()

	seeded := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if result := tx.Model(&models.ItemRecord{}).Where("category = ?", cat.Name).Count(&count); result.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreRead, result.Error)
		}
		if count > 0 || len(items) == 0 {
			return nil
		}
		recs := make([]models.ItemRecord, 0, len(items))
		for _, it := range items {
			recs = append(recs, models.ItemRecord{Category: cat.Name, ItemID: it.ID, URL: it.URL})
		}
		if result := tx.Create(&recs); result.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreWrite, result.Error)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, asWriteError(err)
	}
	return seeded, nil
}

func (s *DBStore) rows(tx *gorm.DB, category string, forUpdate bool) ([]models.ItemRecord, error) {
	q := tx.Where("category = ?", category).Order("id asc")
	if forUpdate && tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []models.ItemRecord
	if result := q.Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, result.Error)
	}
	return rows, nil
}

func toItems(rows []models.ItemRecord) []models.Item {
	items := make([]models.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Item())
	}
	return items
}

// asWriteError leaves store errors alone and tags anything else, such as a failed
// commit, as a write failure.
func asWriteError(err error) error {
	for _, known := range []error{ErrStoreRead, ErrStoreWrite, ErrInvalidRequest, ErrCorruptStore, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreWrite, err)
}
