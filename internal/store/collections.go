package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/duyg/dodoclip/internal/clip"
)

// ErrSmartCollection is returned by mutations addressed to a built-in smart
// collection; smart collections cannot be renamed, deleted or manually
// populated.
var ErrSmartCollection = errors.New("smart collections cannot be modified")

// smartCollections are the built-in, process-constant kind filters. They are
// never persisted; membership is computed from record content kinds on read.
var smartCollections = []*Collection{
	{ID: "smart-text", Name: "Text", Icon: "doc.text", Color: "gray", SortOrder: -6, SmartKind: clip.KindText},
	{ID: "smart-richtext", Name: "Rich Text", Icon: "doc.richtext", Color: "orange", SortOrder: -5, SmartKind: clip.KindRichText},
	{ID: "smart-image", Name: "Images", Icon: "photo", Color: "green", SortOrder: -4, SmartKind: clip.KindImage},
	{ID: "smart-file", Name: "Files", Icon: "folder", Color: "blue", SortOrder: -3, SmartKind: clip.KindFile},
	{ID: "smart-link", Name: "Links", Icon: "link", Color: "purple", SortOrder: -2, SmartKind: clip.KindLink},
	{ID: "smart-color", Name: "Colors", Icon: "paintpalette", Color: "red", SortOrder: -1, SmartKind: clip.KindColor},
}

// AllCollections returns the built-in smart collections followed by the
// custom ones in user sort order.
func (s *Store) AllCollections() []*Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Collection, 0, len(smartCollections)+len(s.collections))
	out = append(out, smartCollections...)
	out = append(out, s.collections...)
	return out
}

// GetCollection looks a collection up by id, smart ones included.
func (s *Store) GetCollection(id string) (*Collection, bool) {
	for _, c := range smartCollections {
		if c.ID == id {
			return c, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionLocked(id)
}

func (s *Store) collectionLocked(id string) (*Collection, bool) {
	for _, c := range s.collections {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ResolveCollection finds a custom collection by id or exact name.
func (s *Store) ResolveCollection(ref string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collections {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no collection matches %q", ref)
}

// CreateCollection appends a custom collection with the next sort order.
func (s *Store) CreateCollection(ctx context.Context, name, icon, color string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := 0
	for _, c := range s.collections {
		if c.SortOrder >= order {
			order = c.SortOrder + 1
		}
	}
	col := &Collection{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		SortOrder: order,
		CreatedAt: s.opts.Now(),
	}
	s.collections = append(s.collections, col)

	s.persist(ctx, func(tx *gorm.DB) error {
		return gorm.G[Collection](tx).Create(ctx, col)
	})
	s.notifyLocked()
	return col
}

// RenameCollection updates a custom collection's name. Stale ids no-op.
func (s *Store) RenameCollection(ctx context.Context, id, name string) error {
	if isSmartID(id) {
		return ErrSmartCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collectionLocked(id)
	if !ok {
		return nil
	}
	col.Name = name
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Collection{}).Where("id = ?", id).Update("name", name).Error
	})
	s.notifyLocked()
	return nil
}

// DeleteCollection removes a custom collection and nullifies membership on
// every affected record. Records themselves are never touched.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	if isSmartID(id) {
		return ErrSmartCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collectionLocked(id)
	if !ok {
		return nil
	}

	kept := s.collections[:0]
	for _, c := range s.collections {
		if c != col {
			kept = append(kept, c)
		}
	}
	s.collections = kept

	for _, rec := range s.records {
		rec.Collections = withoutCollection(rec.Collections, id)
	}

	s.persist(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM record_collections WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		_, err := gorm.G[Collection](tx).Where("id = ?", id).Delete(ctx)
		return err
	})
	s.notifyLocked()
	return nil
}

// AddToCollection adds a record to a custom collection. Idempotent; stale
// ids no-op.
func (s *Store) AddToCollection(ctx context.Context, recordID, collectionID string) error {
	if isSmartID(collectionID) {
		return ErrSmartCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[recordID]
	if !ok {
		return nil
	}
	col, ok := s.collectionLocked(collectionID)
	if !ok {
		return nil
	}
	if rec.InCollection(collectionID) {
		return nil
	}
	rec.Collections = append(rec.Collections, col)

	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Exec(
			"INSERT INTO record_collections (record_id, collection_id) VALUES (?, ?)",
			recordID, collectionID,
		).Error
	})
	s.notifyLocked()
	return nil
}

// RemoveFromCollection removes a record from a custom collection.
// Idempotent; stale ids no-op.
func (s *Store) RemoveFromCollection(ctx context.Context, recordID, collectionID string) error {
	if isSmartID(collectionID) {
		return ErrSmartCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[recordID]
	if !ok {
		return nil
	}
	if !rec.InCollection(collectionID) {
		return nil
	}
	rec.Collections = withoutCollection(rec.Collections, collectionID)

	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Exec(
			"DELETE FROM record_collections WHERE record_id = ? AND collection_id = ?",
			recordID, collectionID,
		).Error
	})
	s.notifyLocked()
	return nil
}

// CollectionRecords returns the visible members of a collection, newest
// first. Smart collections filter by content kind; custom collections use
// stored membership.
func (s *Store) CollectionRecords(collectionID string) []*Record {
	var smart clip.Kind
	for _, c := range smartCollections {
		if c.ID == collectionID {
			smart = c.SmartKind
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Record
	for _, rec := range s.records {
		if rec.Deleted {
			continue
		}
		if smart != "" {
			if rec.Content.Kind == smart {
				out = append(out, rec)
			}
			continue
		}
		if rec.InCollection(collectionID) {
			out = append(out, rec)
		}
	}
	return out
}

func withoutCollection(cols []*Collection, id string) []*Collection {
	out := cols[:0]
	for _, c := range cols {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func isSmartID(id string) bool {
	for _, c := range smartCollections {
		if c.ID == id {
			return true
		}
	}
	return false
}
