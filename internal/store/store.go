package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/duyg/dodoclip/internal/clip"
)

// Options configures a Store.
type Options struct {
	// HistoryLimit bounds the count of unpinned, non-deleted records.
	HistoryLimit int

	// AutoDeleteAfterDays purges unpinned records older than this during
	// retention sweeps. Zero disables age-based eviction.
	AutoDeleteAfterDays int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Provenance identifies the application a clip was copied from. Both fields
// may be empty when the clipboard origin is unknown.
type Provenance struct {
	SourceID   string
	SourceName string
}

// Store is the ordered clipboard history. All mutations are serialized by an
// internal lock; the in-memory state stays authoritative when a write-through
// fails.
type Store struct {
	mu   sync.Mutex
	db   *gorm.DB
	opts Options

	// records holds every loaded row, tombstones included, sorted by Seq
	// descending.
	records []*Record
	byID    map[string]*Record
	// byFP indexes non-deleted records by content fingerprint for dedup.
	byFP map[string]*Record

	collections []*Collection
	nextSeq     int64

	subs    []chan struct{}
	onPurge func(id string)
}

// Open opens (creating if needed) the history database inside dir and loads
// every record ordered newest first. Pass ":memory:" for an ephemeral store.
func Open(dir string, opts Options) (*Store, error) {
	if opts.HistoryLimit <= 0 {
		return nil, errors.New("history limit must be positive")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dsn := dir
	if dir != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = filepath.Join(dir, "history.db")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Record{}, &Collection{}); err != nil {
		return nil, err
	}

	s := &Store{
		db:   db,
		opts: opts,
		byID: make(map[string]*Record),
		byFP: make(map[string]*Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	ctx := context.Background()

	records, err := gorm.G[Record](s.db).
		Preload("Collections", nil).
		Order("seq DESC").
		Find(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		s.records = append(s.records, rec)
		s.byID[rec.ID] = rec
		if !rec.Deleted {
			if _, dup := s.byFP[rec.Fingerprint]; !dup {
				s.byFP[rec.Fingerprint] = rec
			}
		}
		if rec.Seq >= s.nextSeq {
			s.nextSeq = rec.Seq + 1
		}
	}

	collections, err := gorm.G[Collection](s.db).Order("sort_order ASC").Find(ctx)
	if err != nil {
		return err
	}
	for i := range collections {
		s.collections = append(s.collections, &collections[i])
	}

	slog.Debug("history loaded", "records", len(s.records), "collections", len(s.collections))
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Subscribe returns a channel that receives a coarse signal after any
// visible-state change. The signal is best-effort: a slow consumer only
// coalesces notifications, it never blocks the store.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// SetPurgeHook registers a callback invoked with each physically purged
// record id. Used to drop derived assets.
func (s *Store) SetPurgeHook(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPurge = fn
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// persist runs a write-through inside a transaction. A failed save is logged
// and rolled back; the in-memory state stays authoritative for the session.
func (s *Store) persist(ctx context.Context, fn func(tx *gorm.DB) error) {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		slog.Error("history save failed, in-memory state kept", "error", err)
	}
}

func (s *Store) allocSeqLocked() int64 {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

func (s *Store) sortLocked() {
	sort.Slice(s.records, func(i, j int) bool {
		return s.records[i].Seq > s.records[j].Seq
	})
}

// InsertOrBump records a capture. Content structurally equal to a live
// record moves that record to the front and bumps its use count instead of
// creating a duplicate; new content gets a fresh record and triggers a
// retention sweep.
func (s *Store) InsertOrBump(ctx context.Context, content *clip.Content, prov Provenance) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	fp := content.Fingerprint()

	if rec, ok := s.byFP[fp]; ok {
		rec.Seq = s.allocSeqLocked()
		rec.UseCount++
		rec.LastUsedAt = now
		s.sortLocked()
		s.persist(ctx, func(tx *gorm.DB) error {
			return tx.Model(&Record{}).Where("id = ?", rec.ID).Updates(map[string]any{
				"seq":          rec.Seq,
				"use_count":    rec.UseCount,
				"last_used_at": rec.LastUsedAt,
			}).Error
		})
		s.notifyLocked()
		slog.Debug("duplicate capture bumped", "id", rec.ID, "uses", rec.UseCount)
		return rec
	}

	rec := &Record{
		ID:          uuid.NewString(),
		Seq:         s.allocSeqLocked(),
		Fingerprint: fp,
		Content:     *content,
		SourceID:    prov.SourceID,
		SourceName:  prov.SourceName,
		CreatedAt:   now,
		LastUsedAt:  now,
		UseCount:    1,
		CharCount:   content.CharCount(),
		Dimensions:  content.Dimensions(),
	}
	s.records = append([]*Record{rec}, s.records...)
	s.byID[rec.ID] = rec
	s.byFP[fp] = rec

	s.persist(ctx, func(tx *gorm.DB) error {
		return gorm.G[Record](tx).Create(ctx, rec)
	})

	s.enforceRetentionLocked(ctx)
	s.notifyLocked()
	slog.Debug("record captured", "id", rec.ID, "kind", rec.Content.Kind)
	return rec
}

// SoftDelete tombstones a record. The record disappears from the visible
// order immediately but is physically retained until the next retention
// sweep. Unknown or already-deleted ids are a no-op.
func (s *Store) SoftDelete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.Deleted {
		return
	}
	rec.Deleted = true
	if s.byFP[rec.Fingerprint] == rec {
		delete(s.byFP, rec.Fingerprint)
	}
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("deleted", true).Error
	})
	s.notifyLocked()
}

// Restore clears a tombstone. If a live record with equal content appeared
// meanwhile, that record stays the dedup target for future captures.
func (s *Store) Restore(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || !rec.Deleted {
		return
	}
	rec.Deleted = false
	if _, taken := s.byFP[rec.Fingerprint]; !taken {
		s.byFP[rec.Fingerprint] = rec
	}
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("deleted", false).Error
	})
	s.notifyLocked()
}

// TogglePin flips the pin flag. Pinned records are exempt from retention.
func (s *Store) TogglePin(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return
	}
	rec.Pinned = !rec.Pinned
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("pinned", rec.Pinned).Error
	})
	s.notifyLocked()
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return
	}
	rec.Favorite = !rec.Favorite
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("favorite", rec.Favorite).Error
	})
	s.notifyLocked()
}

// Rename sets the user-assigned title.
func (s *Store) Rename(ctx context.Context, id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return
	}
	rec.Title = title
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("title", title).Error
	})
	s.notifyLocked()
}

// MarkUsed bumps the usage stats without reordering, for paste actions.
func (s *Store) MarkUsed(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.Deleted {
		return
	}
	rec.UseCount++
	rec.LastUsedAt = s.opts.Now()
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Updates(map[string]any{
			"use_count":    rec.UseCount,
			"last_used_at": rec.LastUsedAt,
		}).Error
	})
}

// Reorder moves the source record to the target record's position. Both
// must be visible and share the same pinned/unpinned partition. The whole
// visible sequence gets fresh ordering keys so that list order always equals
// key order.
func (s *Store) Reorder(ctx context.Context, sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.byID[sourceID]
	if !ok || src.Deleted {
		return nil
	}
	dst, ok := s.byID[targetID]
	if !ok || dst.Deleted {
		return nil
	}
	if src == dst {
		return nil
	}
	if src.Pinned != dst.Pinned {
		return errors.New("cannot reorder across the pinned boundary")
	}

	visible := s.visibleLocked()
	srcIdx, dstIdx := -1, -1
	for i, rec := range visible {
		if rec == src {
			srcIdx = i
		}
		if rec == dst {
			dstIdx = i
		}
	}
	if srcIdx < 0 || dstIdx < 0 {
		return nil
	}

	visible = append(visible[:srcIdx], visible[srcIdx+1:]...)
	visible = append(visible[:dstIdx], append([]*Record{src}, visible[dstIdx:]...)...)

	// Reassign keys above every previously issued one, newest first.
	base := s.nextSeq
	for i, rec := range visible {
		rec.Seq = base + int64(len(visible)-i)
	}
	s.nextSeq = base + int64(len(visible)) + 1
	s.sortLocked()

	s.persist(ctx, func(tx *gorm.DB) error {
		for _, rec := range visible {
			if err := tx.Model(&Record{}).Where("id = ?", rec.ID).Update("seq", rec.Seq).Error; err != nil {
				return err
			}
		}
		return nil
	})
	s.notifyLocked()
	return nil
}

// MergeLinkMetadata attaches fetched link metadata to a record. Discarded
// silently when the record was deleted or purged while the fetch ran. A
// previously set link title is never overwritten.
func (s *Store) MergeLinkMetadata(ctx context.Context, id, title string, favicon, preview []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.Deleted || rec.Content.Kind != clip.KindLink {
		return
	}
	if rec.Content.LinkTitle == "" {
		rec.Content.LinkTitle = title
	}
	if len(rec.Content.Favicon) == 0 {
		rec.Content.Favicon = favicon
	}
	if len(rec.Content.Preview) == 0 {
		rec.Content.Preview = preview
	}
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Updates(map[string]any{
			"link_title": rec.Content.LinkTitle,
			"favicon":    rec.Content.Favicon,
			"preview":    rec.Content.Preview,
		}).Error
	})
	s.notifyLocked()
}

// AttachRecognizedText stores text recognized inside an image record.
// Discarded silently when the record is gone.
func (s *Store) AttachRecognizedText(ctx context.Context, id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.Deleted || rec.Content.Kind != clip.KindImage {
		return
	}
	rec.RecognizedText = text
	s.persist(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Record{}).Where("id = ?", id).Update("recognized_text", text).Error
	})
	s.notifyLocked()
}

// Get returns a record by id, tombstoned ones included.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	return rec, ok
}

// Resolve finds a record by full id or unique id prefix, for CLI use.
func (s *Store) Resolve(prefix string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.byID[prefix]; ok {
		return rec, nil
	}
	var found *Record
	for _, rec := range s.records {
		if strings.HasPrefix(rec.ID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			found = rec
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no record matches %q", prefix)
	}
	return found, nil
}

// Visible returns the non-deleted records, newest first.
func (s *Store) Visible() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *Store) visibleLocked() []*Record {
	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		if !rec.Deleted {
			out = append(out, rec)
		}
	}
	return out
}

// Search scans visible records for a case-insensitive substring match over
// text, titles, link data, file names and recognized image text.
func (s *Store) Search(query string, limit int) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var out []*Record
	for _, rec := range s.records {
		if rec.Deleted {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		if recordMatches(rec, q) {
			out = append(out, rec)
		}
	}
	return out
}

func recordMatches(rec *Record, q string) bool {
	for _, field := range []string{
		rec.Content.Text,
		rec.Title,
		rec.Content.LinkTitle,
		rec.Content.FileName,
		rec.RecognizedText,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Wipe physically deletes every record, pinned and tombstoned included.
func (s *Store) Wipe(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	purged := s.records
	s.records = nil
	s.byID = make(map[string]*Record)
	s.byFP = make(map[string]*Record)

	var saveErr error
	s.persist(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM record_collections").Error; err != nil {
			saveErr = err
			return err
		}
		if _, err := gorm.G[Record](tx).Where("true").Delete(ctx); err != nil {
			saveErr = err
			return err
		}
		return nil
	})

	for _, rec := range purged {
		if s.onPurge != nil {
			s.onPurge(rec.ID)
		}
	}
	s.notifyLocked()
	return n, saveErr
}
