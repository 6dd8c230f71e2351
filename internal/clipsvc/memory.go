package clipsvc

import (
	"sync"

	"github.com/duyg/dodoclip/internal/clip"
)

// Memory is an in-process clipboard, used by tests and as a stand-in when no
// system clipboard is reachable.
type Memory struct {
	mu    sync.Mutex
	count uint64
	snap  clip.Snapshot
}

var (
	_ Service = (*Memory)(nil)
	_ Writer  = (*Memory)(nil)
)

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) ChangeCount() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, nil
}

func (m *Memory) Read() (clip.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

// Write replaces the clipboard content and bumps the change counter.
func (m *Memory) Write(snap clip.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.count++
	return nil
}
