// Package capture polls the system clipboard at a fixed interval and feeds
// new payloads through privacy filters and the classifier into the history
// store. The loop goroutine is the single owner of all engine mutations;
// asynchronous work hands completions back to it via Post.
package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/duyg/dodoclip/internal/clip"
	"github.com/duyg/dodoclip/internal/clipsvc"
	"github.com/duyg/dodoclip/internal/config"
	"github.com/duyg/dodoclip/internal/store"
)

// Enricher schedules asynchronous post-processing for freshly captured
// records. Implementations must not block the caller.
type Enricher interface {
	EnrichLink(ctx context.Context, id, url string)
	EnrichImage(ctx context.Context, id string, image []byte)
}

// Loop is the capture engine owner. Construct with New, wire an optional
// enricher, then Run.
type Loop struct {
	svc      clipsvc.Service
	store    *store.Store
	settings config.Settings
	enricher Enricher
	pause    *Pauser

	tasks      chan func()
	lastChange uint64
}

// New builds a capture loop. Wire an enricher with SetEnricher before Run,
// or leave it unset to disable enrichment.
func New(svc clipsvc.Service, st *store.Store, settings config.Settings) *Loop {
	return &Loop{
		svc:      svc,
		store:    st,
		settings: settings,
		pause:    newPauser(nil),
		tasks:    make(chan func(), 64),
	}
}

// SetEnricher attaches the enrichment pipeline. Called once during wiring;
// the pipeline needs the loop's Post, so it is constructed after the loop.
func (l *Loop) SetEnricher(e Enricher) { l.enricher = e }

// Pauser exposes the pause state machine.
func (l *Loop) Pauser() *Pauser { return l.pause }

// Post queues fn for execution on the loop goroutine. This is the only
// cross-thread handoff into engine state; enrichment completions use it so
// their record re-validation and mutation happen on the owner.
func (l *Loop) Post(fn func()) {
	l.tasks <- fn
}

// Run polls the clipboard until ctx is cancelled. The payload present before
// the first tick is not captured; only changes are.
func (l *Loop) Run(ctx context.Context) error {
	if cnt, err := l.svc.ChangeCount(); err == nil {
		l.lastChange = cnt
	}

	ticker := time.NewTicker(l.settings.PollInterval)
	defer ticker.Stop()

	slog.Info("capture loop running", "interval", l.settings.PollInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// Tick runs one poll step. Exposed for tests; Run calls it on every ticker
// fire.
func (l *Loop) Tick(ctx context.Context) { l.tick(ctx) }

func (l *Loop) tick(ctx context.Context) {
	if l.pause.Paused() {
		return
	}

	cnt, err := l.svc.ChangeCount()
	if err != nil {
		slog.Debug("clipboard poll failed", "error", err)
		return
	}
	if cnt == l.lastChange {
		return
	}
	l.lastChange = cnt

	snap, err := l.svc.Read()
	if err != nil {
		slog.Debug("clipboard read failed", "error", err)
		return
	}
	if snap.Concealed {
		slog.Debug("concealed payload skipped")
		return
	}
	if l.settings.ShouldIgnore(snap.SourceID) {
		slog.Debug("ignored source skipped", "source", snap.SourceID)
		return
	}

	content := clip.Classify(snap)
	if content == nil {
		return
	}

	rec := l.store.InsertOrBump(ctx, content, store.Provenance{
		SourceID:   snap.SourceID,
		SourceName: snap.SourceName,
	})

	if l.enricher == nil {
		return
	}
	switch rec.Content.Kind {
	case clip.KindLink:
		if rec.Content.LinkTitle == "" {
			l.enricher.EnrichLink(ctx, rec.ID, rec.Content.Text)
		}
	case clip.KindImage:
		if rec.RecognizedText == "" {
			l.enricher.EnrichImage(ctx, rec.ID, rec.Content.Image)
		}
	}
}
