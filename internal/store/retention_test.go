package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionEvictsOldestUnpinned(t *testing.T) {
	s := newTestStore(t, Options{HistoryLimit: 3})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		capture(t, s, fmt.Sprintf("T%d", i))
	}

	assert.Equal(t, []string{"T5", "T4", "T3"}, texts(s.Visible()))

	// T1 and T2 are physically gone, not tombstoned.
	for _, rec := range s.Visible() {
		require.False(t, rec.Deleted)
	}
	assert.Empty(t, s.Search("T1", 0))
	rows, err := countRows(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
}

func TestRetentionPinExemption(t *testing.T) {
	s := newTestStore(t, Options{HistoryLimit: 3})
	ctx := context.Background()

	capture(t, s, "T1")
	capture(t, s, "T2")
	t3 := capture(t, s, "T3")
	s.TogglePin(ctx, t3.ID)
	capture(t, s, "T4")
	capture(t, s, "T5")

	got := texts(s.Visible())
	assert.Equal(t, []string{"T5", "T4", "T3"}, got)

	byText := map[string]*Record{}
	for _, rec := range s.Visible() {
		byText[rec.Content.Text] = rec
	}
	assert.True(t, byText["T3"].Pinned, "pinned record survives past the unpinned quota")
}

func TestRetentionPinnedUnbounded(t *testing.T) {
	s := newTestStore(t, Options{HistoryLimit: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := capture(t, s, fmt.Sprintf("P%d", i))
		s.TogglePin(ctx, rec.ID)
	}
	capture(t, s, "u1")
	capture(t, s, "u2")

	// Five pinned records exceed the limit on their own: every unpinned
	// record is evicted, every pinned one kept.
	visible := s.Visible()
	assert.Len(t, visible, 5)
	for _, rec := range visible {
		assert.True(t, rec.Pinned)
	}
}

func TestRetentionPurgesTombstones(t *testing.T) {
	s := newTestStore(t, Options{HistoryLimit: 10})
	ctx := context.Background()

	rec := capture(t, s, "doomed")
	capture(t, s, "kept")
	s.SoftDelete(ctx, rec.ID)

	s.EnforceRetention(ctx)

	_, ok := s.Get(rec.ID)
	assert.False(t, ok, "sweep must physically purge tombstones")
	rows, err := countRows(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestRetentionAgeBased(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(t, Options{HistoryLimit: 100, AutoDeleteAfterDays: 7, Now: clock.Now})
	ctx := context.Background()

	old := capture(t, s, "old")
	pinnedOld := capture(t, s, "pinned old")
	s.TogglePin(ctx, pinnedOld.ID)

	clock.t = clock.t.AddDate(0, 0, 10)
	capture(t, s, "fresh")

	got := texts(s.Visible())
	assert.NotContains(t, got, "old")
	assert.Contains(t, got, "pinned old", "age eviction never touches pinned records")
	assert.Contains(t, got, "fresh")
	_, ok := s.Get(old.ID)
	assert.False(t, ok)
}

func TestRetentionInvokesPurgeHook(t *testing.T) {
	s := newTestStore(t, Options{HistoryLimit: 1})

	var invalidated []string
	s.SetPurgeHook(func(id string) { invalidated = append(invalidated, id) })

	first := capture(t, s, "first")
	capture(t, s, "second")

	require.Len(t, invalidated, 1)
	assert.Equal(t, first.ID, invalidated[0])
}

// countRows reads the physical row count straight from the database.
func countRows(ctx context.Context, s *Store) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error
	return int(n), err
}
