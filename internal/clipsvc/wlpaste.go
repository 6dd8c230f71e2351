package clipsvc

import (
	"bytes"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/duyg/dodoclip/internal/clip"
)

// concealedMime is offered by password managers to mark transient payloads.
const concealedMime = "x-kde-passwordManagerHint"

var imageMimes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// WlClipboard reads the Wayland clipboard through wl-paste and writes it
// through wl-copy. The change counter is derived by hashing the payload on
// every poll, since wl-clipboard has no native counter.
type WlClipboard struct {
	mu       sync.Mutex
	count    uint64
	lastHash uint64
	snap     clip.Snapshot
}

var (
	_ Service = (*WlClipboard)(nil)
	_ Writer  = (*WlClipboard)(nil)
)

func NewWlClipboard() *WlClipboard { return &WlClipboard{} }

// ChangeCount re-reads the clipboard, bumps the counter when the payload
// hash changed, and caches the snapshot for the following Read.
func (w *WlClipboard) ChangeCount() (uint64, error) {
	snap, err := readSnapshot()
	if err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.count, err
	}

	h := xxh3.HashString(strings.Join([]string{
		snap.Text,
		strings.Join(snap.FileURLs, "\n"),
	}, "\x00"))
	if len(snap.Image) > 0 {
		h = xxh3.Hash(snap.Image)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if h != w.lastHash {
		w.lastHash = h
		w.count++
		w.snap = snap
	}
	return w.count, nil
}

func (w *WlClipboard) Read() (clip.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap, nil
}

// Write sets the clipboard via wl-copy, mirroring how records are pasted
// back out.
func (w *WlClipboard) Write(snap clip.Snapshot) error {
	if len(snap.Image) > 0 {
		cmd := exec.Command("wl-copy", "--type", "image/png")
		cmd.Stdin = bytes.NewReader(snap.Image)
		return cmd.Run()
	}
	cmd := exec.Command("wl-copy")
	cmd.Stdin = strings.NewReader(snap.Text)
	return cmd.Run()
}

func readSnapshot() (clip.Snapshot, error) {
	var snap clip.Snapshot

	out, err := exec.Command("wl-paste", "--list-types").Output()
	if err != nil {
		// Empty clipboard exits non-zero; treat as an empty snapshot.
		return snap, nil
	}
	mimes := strings.Fields(string(out))

	if slices.Contains(mimes, concealedMime) {
		snap.Concealed = true
		return snap, nil
	}

	for _, m := range imageMimes {
		if slices.Contains(mimes, m) {
			data, err := exec.Command("wl-paste", "--type", m).Output()
			if err != nil {
				slog.Debug("wl-paste image read failed", "mime", m, "error", err)
				continue
			}
			snap.Image = data
			return snap, nil
		}
	}

	if slices.Contains(mimes, "text/uri-list") {
		data, err := exec.Command("wl-paste", "--no-newline", "--type", "text/uri-list").Output()
		if err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line != "" && !strings.HasPrefix(line, "#") {
					snap.FileURLs = append(snap.FileURLs, line)
				}
			}
		}
	}

	if data, err := exec.Command("wl-paste", "--no-newline").Output(); err == nil {
		snap.Text = string(data)
	}

	return snap, nil
}
