// SPDX-License-Identifier: Apache-2.0

// Package config loads defaults for the keyring command from a YAML file.
// Command-line flags take precedence over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the structure of keyring.yaml.
type File struct {
	Service string `yaml:"service"`
	User    string `yaml:"user"`
	// Target selects a keychain domain, Credential Manager target name or
	// Secret Service collection; see keyring.NewEntryWithTarget.
	Target  string `yaml:"target"`
	Verbose bool   `yaml:"verbose"`
}

// Options locates the configuration file.
type Options struct {
	// ConfigPath, when set, is the only file read and must exist.
	ConfigPath string
	// XDGConfigHome and HomeDir default to the environment when empty.
	XDGConfigHome string
	HomeDir       string
}

// ErrInvalid is returned for files that exist but cannot be used.
var ErrInvalid = errors.New("config: invalid file")

// DefaultPath returns $XDG_CONFIG_HOME/keyring/keyring.yaml, falling back
// to ~/.config/keyring/keyring.yaml. It returns "" if neither is known.
func DefaultPath(opts Options) string {
	xdg := opts.XDGConfigHome
	if xdg == "" {
		xdg = os.Getenv("XDG_CONFIG_HOME")
	}
	if xdg != "" {
		return filepath.Join(xdg, "keyring", "keyring.yaml")
	}
	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "keyring", "keyring.yaml")
}

// Load reads the configuration and returns it with the path it came from.
// A missing default file yields an empty File and path "".
func Load(opts Options) (File, string, error) {
	if opts.ConfigPath != "" {
		f, err := readFile(opts.ConfigPath)
		if err != nil {
			return File{}, "", err
		}
		return f, opts.ConfigPath, nil
	}

	path := DefaultPath(opts)
	if path == "" {
		return File{}, "", nil
	}
	f, err := readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, "", nil
	}
	if err != nil {
		return File{}, "", err
	}
	return f, path, nil
}

func readFile(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}
	return f, nil
}
