// Package config holds the user facing settings and the ways they reach the
// server: LSP payloads, settings files and the shared Store.
package config

import (
	"slices"
	"sync"
)

type PathResolution string

const (
	PathResolutionSmart    PathResolution = "smart"
	PathResolutionAbsolute PathResolution = "absolute"
	PathResolutionRelative PathResolution = "relative"
)

// Valid reports whether p is one of the known modes.
func (p PathResolution) Valid() bool {
	switch p {
	case PathResolutionSmart, PathResolutionAbsolute, PathResolutionRelative:
		return true
	}
	return false
}

// SettingsSection is the key clients nest the settings under.
const SettingsSection = "twigGoToDefinition"

type DiagnosticsSettings struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type Settings struct {
	PathResolution      PathResolution      `json:"pathResolution" yaml:"pathResolution"`
	TemplateDirectories []string            `json:"templateDirectories" yaml:"templateDirectories"`
	Diagnostics         DiagnosticsSettings `json:"diagnostics" yaml:"diagnostics"`
}

// Default returns a fresh copy of the built-in settings.
func Default() Settings {
	return Settings{
		PathResolution:      PathResolutionSmart,
		TemplateDirectories: []string{"templates", "views", "src/templates", "examples"},
		Diagnostics:         DiagnosticsSettings{Enabled: true},
	}
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	s.TemplateDirectories = slices.Clone(s.TemplateDirectories)
	return s
}

// Store is the process wide settings holder. Settings are only ever replaced
// as a whole.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

func NewStore(initial Settings) *Store {
	return &Store{current: initial.Clone()}
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Store) Set(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings.Clone()
}
