// Package config loads and saves the persistent settings file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// DefaultFile is the document opened when nothing else was chosen.
const DefaultFile = "cream_api.ini"

// Store holds the Steam store client settings.
type Store struct {
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	Country        string `toml:"country"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ChunkSize      int    `toml:"chunk_size"`
	SearchLimit    int    `toml:"search_limit"`
}

// Settings is the on-disk settings document.
type Settings struct {
	// LastFile is the document chosen most recently.
	LastFile string `toml:"last_file"`
	LogLevel string `toml:"log_level"`
	// LogFile receives JSON logs; empty means stderr.
	LogFile string `toml:"log_file"`
	WebPort int    `toml:"web_port"`
	Store   Store  `toml:"store"`
}

// Defaults returns settings with every field populated.
func Defaults() Settings {
	return Settings{
		LastFile: DefaultFile,
		LogLevel: "info",
		WebPort:  8080,
		Store: Store{
			BaseURL:        "https://store.steampowered.com",
			Language:       "en",
			Country:        "us",
			TimeoutSeconds: 15,
			ChunkSize:      20,
			SearchLimit:    30,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dlcini/settings.toml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".dlcini", "settings.toml")
	}
	return filepath.Join(dir, "dlcini", "settings.toml")
}

// Manager handles settings loading and saving
type Manager struct {
	mu       sync.Mutex
	path     string
	settings Settings
}

// NewManager creates a manager for the settings file at path.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{path: path, settings: Defaults()}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file. A missing file keeps the defaults; zero
// values in the file are filled from the defaults too.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.settings = Defaults()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	s := Defaults()
	if _, err := toml.Decode(string(data), &s); err != nil {
		return fmt.Errorf("failed to parse settings %s: %w", m.path, err)
	}
	s.fill(Defaults())
	m.settings = s
	return nil
}

// Save writes the settings file atomically, creating its directory.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m.settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := atomic.WriteFile(m.path, &buf); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetLastFile records the chosen document and saves.
func (m *Manager) SetLastFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.LastFile = path
	return m.save()
}

func (s *Settings) fill(d Settings) {
	if s.LastFile == "" {
		s.LastFile = d.LastFile
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.WebPort <= 0 {
		s.WebPort = d.WebPort
	}
	if s.Store.BaseURL == "" {
		s.Store.BaseURL = d.Store.BaseURL
	}
	if s.Store.Language == "" {
		s.Store.Language = d.Store.Language
	}
	if s.Store.Country == "" {
		s.Store.Country = d.Store.Country
	}
	if s.Store.TimeoutSeconds <= 0 {
		s.Store.TimeoutSeconds = d.Store.TimeoutSeconds
	}
	if s.Store.ChunkSize <= 0 {
		s.Store.ChunkSize = d.Store.ChunkSize
	}
	if s.Store.SearchLimit <= 0 {
		s.Store.SearchLimit = d.Store.SearchLimit
	}
}
