package store

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
)

// EnforceRetention runs a retention sweep: the oldest unpinned records above
// the history limit, unpinned records past the auto-delete age, and every
// tombstoned record are physically purged. Pinned records are never evicted.
func (s *Store) EnforceRetention(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enforceRetentionLocked(ctx)
}

func (s *Store) enforceRetentionLocked(ctx context.Context) {
	doomed := make(map[string]*Record)

	var pinned, unpinned []*Record
	for _, rec := range s.records {
		switch {
		case rec.Deleted:
			doomed[rec.ID] = rec
		case rec.Pinned:
			pinned = append(pinned, rec)
		default:
			unpinned = append(unpinned, rec)
		}
	}

	allowed := s.opts.HistoryLimit - len(pinned)
	if allowed < 0 {
		allowed = 0
	}
	// unpinned is newest first; the excess is at the tail.
	for i := allowed; i < len(unpinned); i++ {
		doomed[unpinned[i].ID] = unpinned[i]
	}

	if days := s.opts.AutoDeleteAfterDays; days > 0 {
		cutoff := s.opts.Now().AddDate(0, 0, -days)
		for _, rec := range unpinned {
			if rec.CreatedAt.Before(cutoff) {
				doomed[rec.ID] = rec
			}
		}
	}

	if len(doomed) == 0 {
		return
	}
	s.purgeLocked(ctx, doomed)
}

// purgeLocked physically removes records from memory and disk, dropping
// membership rows and derived assets with them.
func (s *Store) purgeLocked(ctx context.Context, doomed map[string]*Record) {
	kept := s.records[:0]
	for _, rec := range s.records {
		if _, gone := doomed[rec.ID]; gone {
			delete(s.byID, rec.ID)
			if s.byFP[rec.Fingerprint] == rec {
				delete(s.byFP, rec.Fingerprint)
			}
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept

	ids := make([]string, 0, len(doomed))
	for id := range doomed {
		ids = append(ids, id)
	}

	s.persist(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM record_collections WHERE record_id IN ?", ids).Error; err != nil {
			return err
		}
		_, err := gorm.G[Record](tx).Where("id IN ?", ids).Delete(ctx)
		return err
	})

	if s.onPurge != nil {
		for _, id := range ids {
			s.onPurge(id)
		}
	}
	s.notifyLocked()
	slog.Debug("retention purge", "purged", len(ids))
}
