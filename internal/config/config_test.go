package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BroadcastAddress != DefaultBroadcastAddress {
		t.Fatalf("expected default broadcast address, got %q", cfg.BroadcastAddress)
	}
	if len(cfg.SwitchKeys) != 2 {
		t.Fatalf("expected default switch keys, got %v", cfg.SwitchKeys)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"commander": true, "socket_gid": 42}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Commander {
		t.Fatalf("expected commander=true")
	}
	if cfg.SocketGID != 42 {
		t.Fatalf("expected socket_gid=42, got %d", cfg.SocketGID)
	}
	if cfg.BroadcastAddress != DefaultBroadcastAddress {
		t.Fatalf("expected default broadcast address to survive merge, got %q", cfg.BroadcastAddress)
	}
}

func TestLoadMalformedFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`not json`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestResolveKeys(t *testing.T) {
	codes := ResolveKeys([]string{"RightCtrl", "Tab", "Unknown"})
	if len(codes) != 2 {
		t.Fatalf("expected 2 resolved codes, got %v", codes)
	}
}
