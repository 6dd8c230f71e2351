// Package assets holds the bounded caches for derived record assets:
// thumbnails, favicons and link preview images, all keyed by record id.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
)

// Default per-cache entry ceilings.
const (
	DefaultThumbnailEntries = 256
	DefaultFaviconEntries   = 512
	DefaultPreviewEntries   = 128
)

// Cache owns the three independent bounded asset caches. Eviction is
// least-recently-used per cache.
type Cache struct {
	thumbnails *lru.Cache[string, image.Image]
	favicons   *lru.Cache[string, image.Image]
	previews   *lru.Cache[string, image.Image]
}

// New creates a cache with the given per-kind entry ceilings. Non-positive
// ceilings fall back to the defaults.
func New(thumbnails, favicons, previews int) (*Cache, error) {
	if thumbnails <= 0 {
		thumbnails = DefaultThumbnailEntries
	}
	if favicons <= 0 {
		favicons = DefaultFaviconEntries
	}
	if previews <= 0 {
		previews = DefaultPreviewEntries
	}

	tc, err := lru.New[string, image.Image](thumbnails)
	if err != nil {
		return nil, err
	}
	fc, err := lru.New[string, image.Image](favicons)
	if err != nil {
		return nil, err
	}
	pc, err := lru.New[string, image.Image](previews)
	if err != nil {
		return nil, err
	}
	return &Cache{thumbnails: tc, favicons: fc, previews: pc}, nil
}

// Thumbnail returns the cached thumbnail for a record, decoding and scaling
// source on first use.
func (c *Cache) Thumbnail(id string, source []byte, maxSize int) (image.Image, error) {
	return getOrCreate(c.thumbnails, id, source, maxSize)
}

// Favicon returns the cached favicon image for a record.
func (c *Cache) Favicon(id string, source []byte, maxSize int) (image.Image, error) {
	return getOrCreate(c.favicons, id, source, maxSize)
}

// Preview returns the cached link preview image for a record.
func (c *Cache) Preview(id string, source []byte, maxSize int) (image.Image, error) {
	return getOrCreate(c.previews, id, source, maxSize)
}

// Invalidate drops every cached asset for a record id. Called when the
// record is physically purged.
func (c *Cache) Invalidate(id string) {
	c.thumbnails.Remove(id)
	c.favicons.Remove(id)
	c.previews.Remove(id)
}

func getOrCreate(cache *lru.Cache[string, image.Image], id string, source []byte, maxSize int) (image.Image, error) {
	if img, ok := cache.Get(id); ok {
		return img, nil
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("no source bytes for %s", id)
	}
	img, err := Scale(source, maxSize)
	if err != nil {
		return nil, err
	}
	cache.Add(id, img)
	return img, nil
}

// Scale decodes source and scales it down to fit within maxSize on its
// longest edge. Images already within bounds are returned as decoded; the
// result is never upscaled.
func Scale(source []byte, maxSize int) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img, nil
	}

	if w >= h {
		h = h * maxSize / w
		w = maxSize
	} else {
		w = w * maxSize / h
		h = maxSize
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	slog.Debug("asset scaled", "format", format, "width", w, "height", h)
	return dst, nil
}

// Encode serializes a derived asset back to PNG bytes.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
