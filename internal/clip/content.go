// Package clip defines the clipboard content model and the classifier that
// turns a raw clipboard snapshot into typed content.
package clip

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Kind is the content kind of a captured clip.
type Kind string

const (
	KindText     Kind = "text"
	KindRichText Kind = "richtext"
	KindImage    Kind = "image"
	KindFile     Kind = "file"
	KindLink     Kind = "link"
	KindColor    Kind = "color"
)

// Kinds lists every built-in content kind.
var Kinds = []Kind{KindText, KindRichText, KindImage, KindFile, KindLink, KindColor}

// Snapshot is one read of the system clipboard. Fields are filled per
// representation the clipboard currently offers; the classifier picks the
// highest-priority one.
type Snapshot struct {
	Text     string
	RTF      []byte
	Image    []byte
	FileURLs []string

	// Source application, when the clipboard service knows it.
	SourceID   string
	SourceName string

	// Concealed marks transient payloads (password managers). Concealed
	// snapshots are never captured.
	Concealed bool
}

// Content is the typed payload of a record. Exactly the fields relevant to
// Kind are set; everything else is zero.
type Content struct {
	Kind Kind

	// Text holds the payload string for text-like kinds: the plain text for
	// Text and RichText, the URL for Link, the normalized hex for Color.
	Text string

	// RTF is the formatting payload for RichText.
	RTF []byte

	Image  []byte
	Width  int
	Height int

	FilePath string
	FileName string

	// Fetched link metadata. Not part of content identity.
	LinkTitle string
	Favicon   []byte
	Preview   []byte
}

// Fingerprint returns a stable hash of the semantically meaningful payload.
// Two contents are considered the same clip iff their fingerprints match:
// link metadata, image dimensions and file display names never contribute.
func (c *Content) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(c.Kind))
	b.WriteByte(0)
	switch c.Kind {
	case KindImage:
		b.Write(c.Image)
	case KindFile:
		b.WriteString(c.FilePath)
	case KindRichText:
		b.WriteString(c.Text)
		b.WriteByte(0)
		b.Write(c.RTF)
	default:
		b.WriteString(c.Text)
	}
	sum := xxh3.Hash128([]byte(b.String())).Bytes()
	return hex.EncodeToString(sum[:])
}

// Equal reports structural equality on the meaningful payload.
func (c *Content) Equal(other *Content) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Fingerprint() == other.Fingerprint()
}

// CharCount returns the character count for text-like kinds, 0 otherwise.
func (c *Content) CharCount() int {
	switch c.Kind {
	case KindText, KindRichText, KindLink, KindColor:
		return len([]rune(c.Text))
	}
	return 0
}

// Dimensions returns a "WxH" string for images with known dimensions.
func (c *Content) Dimensions() string {
	if c.Kind != KindImage || c.Width == 0 || c.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// Summary returns a short single-line description of the payload, used by
// the CLI listing.
func (c *Content) Summary() string {
	switch c.Kind {
	case KindImage:
		if d := c.Dimensions(); d != "" {
			return "[image " + d + "]"
		}
		return "[image]"
	case KindFile:
		return c.FileName
	default:
		fields := strings.Fields(c.Text)
		out := strings.Join(fields, " ")
		if len(out) > 100 {
			out = out[:100]
		}
		return out
	}
}
