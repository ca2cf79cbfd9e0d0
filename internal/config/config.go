// Package config holds the coordinator's configuration surface (spec.md
// §6), loaded from a JSON file and merged over built-in defaults the way
// gnunet/config/config.go loads its Config -- not the original Rust CLI's
// clap+serde_yaml, since this module follows the teacher's ambient stack.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBroadcastAddress is the LAN broadcast endpoint used when none is
// configured (spec.md §6).
const DefaultBroadcastAddress = "192.168.24.255:45321"

// Config is the full configuration surface consumed by the coordinator
// and its connectors.
type Config struct {
	NodeName         string   `json:"node_name"`
	BroadcastAddress string   `json:"broadcast_address"`
	SwitchKeys       []string `json:"switch_keys"`
	CommanderKeys    []string `json:"commander_keys"`
	Commander        bool     `json:"commander"`
	SocketGID        uint32   `json:"socket_gid"`
	InputSocketPath  string   `json:"input_socket_path"`
	StatusAddress    string   `json:"status_address"`
}

// Defaults returns a Config with every spec.md §6 default applied, plus
// the node name resolved from the OS hostname.
func Defaults() Config {
	name, err := os.Hostname()
	if err != nil {
		name = "rkvm2"
	}
	return Config{
		NodeName:         name,
		BroadcastAddress: DefaultBroadcastAddress,
		SwitchKeys:       []string{"RightCtrl", "Tab"},
		CommanderKeys:    []string{"RightCtrl", "RightAlt"},
		Commander:        false,
		SocketGID:        0,
		InputSocketPath:  fmt.Sprintf("/var/run/%s.sock", name),
		StatusAddress:    "127.0.0.1:45322",
	}
}

// Load reads path (if it exists) as JSON and merges it over Defaults();
// a missing file is not an error, a malformed one is (spec.md §7 error
// taxonomy #4: configuration failure is fatal at startup).
func Load(path string) (Config, error) {
	cfg := Defaults()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.SwitchKeys) == 0 {
		cfg.SwitchKeys = Defaults().SwitchKeys
	}
	if len(cfg.CommanderKeys) == 0 {
		cfg.CommanderKeys = Defaults().CommanderKeys
	}
	if cfg.BroadcastAddress == "" {
		cfg.BroadcastAddress = DefaultBroadcastAddress
	}
	return cfg, nil
}

// ResolvePath mirrors original_source/config/src/lib.rs's search order: an
// explicit, existing path wins; otherwise fall back to
// $XDG_CONFIG_HOME/rkvm2/config.json (os.UserConfigDir is the idiomatic Go
// stand-in for the Rust CLI's ProjectDirs lookup).
func ResolvePath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return explicit
	}
	return filepath.Join(dir, "rkvm2", "config.json")
}
