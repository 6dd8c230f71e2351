package clip

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want Kind
	}{
		{"plain text", Snapshot{Text: "hello"}, KindText},
		{"https link", Snapshot{Text: "https://example.com"}, KindLink},
		{"http link", Snapshot{Text: "http://example.com/a?b=c"}, KindLink},
		{"bad scheme is text", Snapshot{Text: "htp://bad"}, KindText},
		{"scheme without host is text", Snapshot{Text: "https://"}, KindText},
		{"hex color with hash", Snapshot{Text: "#1A2B3C"}, KindColor},
		{"hex color without hash", Snapshot{Text: "1A2B3C"}, KindColor},
		{"hex color with alpha", Snapshot{Text: "#1a2b3c80"}, KindColor},
		{"short hex is text", Snapshot{Text: "#1A2"}, KindText},
		{"rich text", Snapshot{Text: "styled", RTF: []byte(`{\rtf1}`)}, KindRichText},
		{"file url", Snapshot{FileURLs: []string{"file:///tmp/report.pdf"}}, KindFile},
		{"padded link", Snapshot{Text: "  https://example.com \n"}, KindLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.snap)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestClassifyEmptyPayload(t *testing.T) {
	assert.Nil(t, Classify(Snapshot{}))
	assert.Nil(t, Classify(Snapshot{Text: "   \n\t"}))
}

func TestClassifyPriority(t *testing.T) {
	img := pngBytes(t, 4, 2)

	// Image wins over everything.
	got := Classify(Snapshot{Text: "https://example.com", Image: img, FileURLs: []string{"file:///tmp/a"}})
	require.NotNil(t, got)
	assert.Equal(t, KindImage, got.Kind)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 2, got.Height)

	// File wins over textual representations.
	got = Classify(Snapshot{Text: "https://example.com", FileURLs: []string{"file:///tmp/a.txt"}})
	require.NotNil(t, got)
	assert.Equal(t, KindFile, got.Kind)
	assert.Equal(t, "/tmp/a.txt", got.FilePath)
	assert.Equal(t, "a.txt", got.FileName)

	// Link wins over color and text even with RTF present.
	got = Classify(Snapshot{Text: "https://example.com", RTF: []byte("x")})
	require.NotNil(t, got)
	assert.Equal(t, KindLink, got.Kind)
}

func TestClassifyColorNormalized(t *testing.T) {
	got := Classify(Snapshot{Text: "1A2B3C"})
	require.NotNil(t, got)
	assert.Equal(t, "#1a2b3c", got.Text)
}

func TestFingerprintIdentity(t *testing.T) {
	a := Classify(Snapshot{Text: "https://example.com"})
	b := Classify(Snapshot{Text: "https://example.com"})
	require.NotNil(t, a)
	require.NotNil(t, b)

	// Fetched metadata never contributes to identity.
	b.LinkTitle = "Example"
	b.Favicon = []byte{1, 2, 3}
	assert.True(t, a.Equal(b))

	c := Classify(Snapshot{Text: "https://example.org"})
	assert.False(t, a.Equal(c))

	// Different kinds with the same payload string are different clips.
	text := &Content{Kind: KindText, Text: "#1a2b3c"}
	color := &Content{Kind: KindColor, Text: "#1a2b3c"}
	assert.False(t, text.Equal(color))
}

func TestDerivedMetadata(t *testing.T) {
	c := Classify(Snapshot{Text: "héllo"})
	require.NotNil(t, c)
	assert.Equal(t, 5, c.CharCount())

	img := Classify(Snapshot{Image: pngBytes(t, 10, 20)})
	require.NotNil(t, img)
	assert.Equal(t, "10x20", img.Dimensions())
	assert.Equal(t, 0, img.CharCount())
}
