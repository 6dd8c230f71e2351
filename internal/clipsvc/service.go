// Package clipsvc abstracts the system clipboard behind a small polling
// interface: a monotonically increasing change counter plus the current
// payload by type.
package clipsvc

import "github.com/duyg/dodoclip/internal/clip"

// Service is the clipboard collaborator the capture loop polls. ChangeCount
// must increase whenever the clipboard content changes; Read returns the
// current payload. A Read racing a concurrent clipboard write may return the
// newer payload, which is fine: the next poll sees a stable counter and
// skips.
type Service interface {
	ChangeCount() (uint64, error)
	Read() (clip.Snapshot, error)
}

// Writer is implemented by services that can also set the clipboard. Used by
// the copy command, never by the capture loop.
type Writer interface {
	Write(clip.Snapshot) error
}
