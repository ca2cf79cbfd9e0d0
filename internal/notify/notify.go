// Package notify defines the Notifier capability (spec.md §4.6): a narrow
// best-effort interface the coordinator uses at switch boundaries. Desktop
// notification delivery is platform-specific and out of scope (spec.md
// §1); LogNotifier is the default stand-in.
package notify

import "github.com/bfix/gospel/logger"

// Handle represents one live notification; Close dismisses it.
type Handle interface {
	Close() error
}

// Notifier shows a short text notification and returns a handle the
// caller must Close to dismiss it. Errors are logged by the caller and
// never abort a switch (spec.md §4.6).
type Notifier interface {
	Show(text string) (Handle, error)
}

// LogNotifier logs each notification instead of raising a real desktop
// one -- sufficient for headless nodes and tests, swappable for a real
// backend via the Notifier interface.
type LogNotifier struct{}

func (LogNotifier) Show(text string) (Handle, error) {
	logger.Printf(logger.INFO, "[notify] %s", text)
	return noopHandle{}, nil
}

type noopHandle struct{}

func (noopHandle) Close() error { return nil }
