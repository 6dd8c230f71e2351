package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duyg/dodoclip/internal/clip"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = 100
	}
	if opts.Now == nil {
		clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
		opts.Now = clock.Now
	}
	s, err := Open(":memory:", opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func textContent(t *testing.T, s string) *clip.Content {
	t.Helper()
	c := clip.Classify(clip.Snapshot{Text: s})
	require.NotNil(t, c)
	return c
}

func capture(t *testing.T, s *Store, text string) *Record {
	t.Helper()
	return s.InsertOrBump(context.Background(), textContent(t, text), Provenance{})
}

func requireOrderInvariant(t *testing.T, s *Store) {
	t.Helper()
	visible := s.Visible()
	for i := 1; i < len(visible); i++ {
		require.Greater(t, visible[i-1].Seq, visible[i].Seq,
			"visible list must be strictly descending by ordering key")
	}
}

func TestInsertOrBumpDedup(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	r1 := capture(t, s, "hello")
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, 1, r1.UseCount)

	capture(t, s, "world")
	again := s.InsertOrBump(ctx, textContent(t, "hello"), Provenance{})

	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, r1.ID, again.ID, "repeat capture must reuse the record")
	assert.Equal(t, 2, again.UseCount)
	assert.Equal(t, r1.ID, visible[0].ID, "repeat capture must move the record to the front")
	requireOrderInvariant(t, s)
}

func TestInsertOrBumpProvenance(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := s.InsertOrBump(context.Background(), textContent(t, "x"), Provenance{
		SourceID:   "org.gnome.TextEditor",
		SourceName: "Text Editor",
	})
	assert.Equal(t, "org.gnome.TextEditor", rec.SourceID)
	assert.Equal(t, "Text Editor", rec.SourceName)
	assert.Equal(t, 1, rec.CharCount)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.LastUsedAt)
}

func TestSoftDeleteExcludesAndRestoreReturns(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	r1 := capture(t, s, "one")
	capture(t, s, "two")

	s.SoftDelete(ctx, r1.ID)
	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "two", visible[0].Content.Text)
	assert.Empty(t, s.Search("one", 0), "tombstoned records must not match searches")

	// Deleting again is a no-op.
	s.SoftDelete(ctx, r1.ID)
	require.Len(t, s.Visible(), 1)

	s.Restore(ctx, r1.ID)
	require.Len(t, s.Visible(), 2)
	requireOrderInvariant(t, s)
}

func TestSoftDeleteFreesDedupSlot(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	r1 := capture(t, s, "hello")
	s.SoftDelete(ctx, r1.ID)

	// Equal content captured after the delete must create a fresh record.
	r2 := capture(t, s, "hello")
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Equal(t, 1, r2.UseCount)
	require.Len(t, s.Visible(), 1)
}

func TestStaleIDsAreNoOps(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	capture(t, s, "keep")
	s.SoftDelete(ctx, "missing")
	s.Restore(ctx, "missing")
	s.TogglePin(ctx, "missing")
	s.ToggleFavorite(ctx, "missing")
	s.Rename(ctx, "missing", "t")
	s.MarkUsed(ctx, "missing")
	s.MergeLinkMetadata(ctx, "missing", "t", nil, nil)
	s.AttachRecognizedText(ctx, "missing", "t")
	require.NoError(t, s.Reorder(ctx, "missing", "also-missing"))

	require.Len(t, s.Visible(), 1)
}

func TestToggleAndRename(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	rec := capture(t, s, "note")
	s.TogglePin(ctx, rec.ID)
	assert.True(t, rec.Pinned)
	s.TogglePin(ctx, rec.ID)
	assert.False(t, rec.Pinned)

	s.ToggleFavorite(ctx, rec.ID)
	assert.True(t, rec.Favorite)

	s.Rename(ctx, rec.ID, "my note")
	assert.Equal(t, "my note", rec.Title)

	// Pure mutations never reorder.
	capture(t, s, "newer")
	s.ToggleFavorite(ctx, rec.ID)
	assert.Equal(t, "newer", s.Visible()[0].Content.Text)
}

func TestReorder(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	a := capture(t, s, "a")
	capture(t, s, "b")
	c := capture(t, s, "c")
	// visible: c, b, a

	require.NoError(t, s.Reorder(ctx, a.ID, c.ID))
	got := texts(s.Visible())
	assert.Equal(t, []string{"a", "c", "b"}, got)
	requireOrderInvariant(t, s)

	// New captures still land at the front.
	capture(t, s, "d")
	assert.Equal(t, "d", s.Visible()[0].Content.Text)
	requireOrderInvariant(t, s)
}

func TestReorderAcrossPartitionsRejected(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	a := capture(t, s, "a")
	b := capture(t, s, "b")
	s.TogglePin(ctx, a.ID)

	err := s.Reorder(ctx, a.ID, b.ID)
	require.Error(t, err)
	assert.Equal(t, []string{"b", "a"}, texts(s.Visible()))
}

func TestMergeLinkMetadata(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	rec := s.InsertOrBump(ctx, textContent(t, "https://example.com"), Provenance{})
	require.Equal(t, clip.KindLink, rec.Content.Kind)

	s.MergeLinkMetadata(ctx, rec.ID, "Example", []byte{1}, []byte{2})
	assert.Equal(t, "Example", rec.Content.LinkTitle)
	assert.Equal(t, []byte{1}, rec.Content.Favicon)
	assert.Equal(t, []byte{2}, rec.Content.Preview)

	// A second completion never overwrites what is already there.
	s.MergeLinkMetadata(ctx, rec.ID, "Other", []byte{9}, nil)
	assert.Equal(t, "Example", rec.Content.LinkTitle)
	assert.Equal(t, []byte{1}, rec.Content.Favicon)
}

func TestMergeLinkMetadataAfterDeleteDiscarded(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	rec := s.InsertOrBump(ctx, textContent(t, "https://example.com"), Provenance{})
	s.SoftDelete(ctx, rec.ID)

	// Enrichment finishing after the user deleted the record must not
	// resurrect it.
	s.MergeLinkMetadata(ctx, rec.ID, "Example", nil, nil)
	assert.Empty(t, rec.Content.LinkTitle)
	assert.Empty(t, s.Visible())
}

func TestAttachRecognizedText(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	img := s.InsertOrBump(ctx, &clip.Content{Kind: clip.KindImage, Image: []byte{1, 2, 3}}, Provenance{})
	s.AttachRecognizedText(ctx, img.ID, "receipt total 42")
	assert.Equal(t, "receipt total 42", img.RecognizedText)

	got := s.Search("receipt", 0)
	require.Len(t, got, 1)
	assert.Equal(t, img.ID, got[0].ID)

	// Wrong kind is ignored.
	txt := capture(t, s, "plain")
	s.AttachRecognizedText(ctx, txt.ID, "nope")
	assert.Empty(t, txt.RecognizedText)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	capture(t, s, "Alpha Report")
	rec := capture(t, s, "unrelated")
	s.Rename(ctx, rec.ID, "alpha notes")
	capture(t, s, "beta")

	got := s.Search("ALPHA", 0)
	require.Len(t, got, 2)

	got = s.Search("alpha", 1)
	require.Len(t, got, 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	opts := Options{HistoryLimit: 100, Now: clock.Now}

	s, err := Open(dir, opts)
	require.NoError(t, err)

	ctx := context.Background()
	a := s.InsertOrBump(ctx, textContent(t, "first"), Provenance{SourceID: "app.a"})
	b := s.InsertOrBump(ctx, textContent(t, "second"), Provenance{})
	s.TogglePin(ctx, a.ID)
	s.Rename(ctx, a.ID, "kept title")
	s.SoftDelete(ctx, b.ID)
	col := s.CreateCollection(ctx, "Work", "folder", "blue")
	require.NoError(t, s.AddToCollection(ctx, a.ID, col.ID))
	require.NoError(t, s.Close())

	s2, err := Open(dir, opts)
	require.NoError(t, err)
	defer s2.Close()

	visible := s2.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, a.ID, visible[0].ID)
	assert.True(t, visible[0].Pinned)
	assert.Equal(t, "kept title", visible[0].Title)
	assert.Equal(t, "app.a", visible[0].SourceID)
	assert.True(t, visible[0].InCollection(col.ID))

	// The tombstone survived the restart and is still restorable.
	gone, ok := s2.Get(b.ID)
	require.True(t, ok)
	assert.True(t, gone.Deleted)
	s2.Restore(ctx, b.ID)
	assert.Len(t, s2.Visible(), 2)

	// Dedup index was rebuilt from disk.
	bumped := s2.InsertOrBump(ctx, textContent(t, "first"), Provenance{})
	assert.Equal(t, a.ID, bumped.ID)
}

func TestSubscribeCoalesces(t *testing.T) {
	s := newTestStore(t, Options{})
	ch := s.Subscribe()

	capture(t, s, "one")
	capture(t, s, "two")
	capture(t, s, "three")

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification")
	}
	// Signals coalesce instead of queueing.
	select {
	case <-ch:
		t.Fatal("expected at most one buffered notification")
	default:
	}
}

func TestWipe(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	a := capture(t, s, "a")
	s.TogglePin(ctx, a.ID)
	capture(t, s, "b")

	var invalidated []string
	s.SetPurgeHook(func(id string) { invalidated = append(invalidated, id) })

	n, err := s.Wipe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Visible())
	assert.Len(t, invalidated, 2)
}

func texts(recs []*Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Content.Text
	}
	return out
}
