// Package enrich runs best-effort asynchronous post-processing on captured
// records: link metadata fetches and image text recognition. Completions are
// marshalled back onto the engine owner and silently dropped when the target
// record disappeared meanwhile.
package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/duyg/dodoclip/internal/store"
)

// Recognizer extracts text from image bytes. Implementations are expected to
// be slow and fallible; failures leave the record without recognized text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// NoopRecognizer is the default recognizer: it never finds text.
type NoopRecognizer struct{}

func (NoopRecognizer) Recognize(context.Context, []byte) (string, error) { return "", nil }

// Pipeline schedules enrichment work. Each task runs on its own goroutine
// and hands its completion to the post function, which must execute the
// closure on the engine owner.
type Pipeline struct {
	store      *store.Store
	client     *http.Client
	recognizer Recognizer
	post       func(func())
}

// New builds a pipeline. A nil recognizer disables image recognition, a nil
// client gets a sane default.
func New(st *store.Store, post func(func()), recognizer Recognizer, client *http.Client) *Pipeline {
	if recognizer == nil {
		recognizer = NoopRecognizer{}
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Pipeline{store: st, client: client, recognizer: recognizer, post: post}
}

// EnrichLink fetches page title, favicon and preview image for a link record
// and merges them in. Never retries; a failed fetch leaves the optional
// fields empty.
func (p *Pipeline) EnrichLink(ctx context.Context, id, rawURL string) {
	go func() {
		meta, err := p.fetchLinkMetadata(ctx, rawURL)
		if err != nil {
			slog.Debug("link enrichment failed", "id", id, "url", rawURL, "error", err)
			return
		}
		p.post(func() {
			p.store.MergeLinkMetadata(ctx, id, meta.title, meta.favicon, meta.preview)
		})
	}()
}

// EnrichImage runs text recognition over image bytes and attaches the result
// to the record.
func (p *Pipeline) EnrichImage(ctx context.Context, id string, image []byte) {
	go func() {
		text, err := p.recognizer.Recognize(ctx, image)
		if err != nil {
			slog.Debug("image recognition failed", "id", id, "error", err)
			return
		}
		if text == "" {
			return
		}
		p.post(func() {
			p.store.AttachRecognizedText(ctx, id, text)
		})
	}()
}
