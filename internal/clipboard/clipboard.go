// Package clipboard defines the Clipboard capability (spec.md §4.6): a
// narrow get/set text interface the coordinator uses at switch
// boundaries. OS clipboard integration is out of scope (spec.md §1);
// MemClipboard is the default in-process stand-in.
package clipboard

import "sync"

// Clipboard reads and writes clipboard text. Both operations may fail;
// callers log and continue -- a switch never blocks on clipboard success
// (spec.md §4.6, §7 error taxonomy #3).
type Clipboard interface {
	GetText() (string, error)
	SetText(text string) error
}

// MemClipboard is an in-process stand-in for the OS clipboard API.
type MemClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *MemClipboard) GetText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *MemClipboard) SetText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}
