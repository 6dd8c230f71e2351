// Package store owns the ordered clipboard history: record identity,
// ordering, pin/favorite/tombstone state, collection membership and the
// retention policy. The in-memory state is authoritative for the session and
// every mutation is written through to SQLite.
package store

import (
	"time"

	"github.com/duyg/dodoclip/internal/clip"
)

// Record is one captured clipboard entry.
type Record struct {
	ID string `gorm:"primaryKey;size:36"`

	// Seq is the monotonic ordering key. The visible list is always sorted
	// by Seq descending; reorders reassign Seq, never CreatedAt.
	Seq int64 `gorm:"uniqueIndex"`

	// Fingerprint is the content identity hash used for deduplication.
	Fingerprint string `gorm:"index"`

	Content clip.Content `gorm:"embedded"`

	// RecognizedText is filled asynchronously by image text recognition.
	RecognizedText string

	// Source application, when known.
	SourceID   string
	SourceName string

	// Title is the optional user-assigned name.
	Title string

	Pinned   bool
	Favorite bool
	Deleted  bool `gorm:"index"`

	CreatedAt  time.Time
	LastUsedAt time.Time
	UseCount   int

	// Derived metadata cached at creation time.
	CharCount  int
	Dimensions string

	Collections []*Collection `gorm:"many2many:record_collections"`
}

// InCollection reports stored membership. Smart collections never appear
// here; their membership is computed from the content kind.
func (r *Record) InCollection(collectionID string) bool {
	for _, c := range r.Collections {
		if c.ID == collectionID {
			return true
		}
	}
	return false
}

// Collection is a named group of records. Built-in smart collections carry a
// SmartKind and are never persisted; custom collections store explicit
// membership on each record.
type Collection struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string
	Icon      string
	Color     string
	SortOrder int

	// SmartKind marks a built-in collection whose membership is computed
	// from the record content kind. Zero for custom collections.
	SmartKind clip.Kind `gorm:"-"`

	CreatedAt time.Time
}

// IsSmart reports whether the collection is a built-in smart filter.
func (c *Collection) IsSmart() bool { return c.SmartKind != "" }
