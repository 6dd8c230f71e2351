package clip

import (
	"bytes"
	"image"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var colorPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// Classify converts a clipboard snapshot into typed content. When the
// snapshot carries several representations the priority is
// Image > File > Link > Color > Text. Returns nil for empty or unsupported
// payloads; no record should be created for those.
func Classify(snap Snapshot) *Content {
	if len(snap.Image) > 0 {
		c := &Content{Kind: KindImage, Image: snap.Image}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(snap.Image)); err == nil {
			c.Width = cfg.Width
			c.Height = cfg.Height
		}
		return c
	}

	if len(snap.FileURLs) > 0 {
		path := fileURLPath(snap.FileURLs[0])
		if path != "" {
			return &Content{
				Kind:     KindFile,
				FilePath: path,
				FileName: filepath.Base(path),
			}
		}
	}

	trimmed := strings.TrimSpace(snap.Text)
	if trimmed == "" {
		return nil
	}

	if isLink(trimmed) {
		return &Content{Kind: KindLink, Text: trimmed}
	}

	if colorPattern.MatchString(trimmed) {
		return &Content{Kind: KindColor, Text: normalizeHex(trimmed)}
	}

	if len(snap.RTF) > 0 {
		return &Content{Kind: KindRichText, Text: snap.Text, RTF: snap.RTF}
	}

	return &Content{Kind: KindText, Text: snap.Text}
}

// isLink reports whether s is an http(s) URL with a non-empty host.
func isLink(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

// normalizeHex lowercases a color string and guarantees a leading '#'.
func normalizeHex(s string) string {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s
}

// fileURLPath extracts a filesystem path from a file:// URL. Bare paths are
// passed through so services that hand over plain paths still work.
func fileURLPath(raw string) string {
	if strings.HasPrefix(raw, "file://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Path
	}
	return raw
}
