// Package config loads the user-level settings of the proposal CLI.
//
// Settings live in the config dir (PROPOSAL_CONFIG_DIR, else ~/.proposal) as
// config.yaml, config.toml or config.json; the first one found wins.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const EnvConfigDir = "PROPOSAL_CONFIG_DIR"

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var fileNames = []struct {
	name   string
	format Format
}{
	{"config.yaml", FormatYAML},
	{"config.yml", FormatYAML},
	{"config.toml", FormatTOML},
	{"config.json", FormatJSON},
}

type Config struct {
	// CurrentWorkspace is used when neither --dir nor --workspace is given and
	// no .proposal directory is found above the cwd.
	CurrentWorkspace string `yaml:"current_workspace,omitempty" toml:"current_workspace,omitempty" json:"currentWorkspace,omitempty"`

	Storage StorageConfig `yaml:"storage" toml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
	Editor  EditorConfig  `yaml:"editor" toml:"editor" json:"editor"`
	Server  ServerConfig  `yaml:"server" toml:"server" json:"server"`
	Preview PreviewConfig `yaml:"preview" toml:"preview" json:"preview"`

	// path and format the config was read from; Save writes back to the same place.
	path   string
	format Format
}

type StorageConfig struct {
	// Backend is one of sqlite|bolt|file.
	Backend string `yaml:"backend" toml:"backend" json:"backend"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	Debug bool   `yaml:"debug" toml:"debug" json:"debug"`
}

type EditorConfig struct {
	// DebounceMS is the quiet period before edits and autosaves are committed.
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms" json:"debounceMs"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr" json:"addr"`
}

type PreviewConfig struct {
	Width int    `yaml:"width" toml:"width" json:"width"`
	Style string `yaml:"style" toml:"style" json:"style"`
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Editor.DebounceMS) * time.Millisecond
}

// Path is the file the config was loaded from ("" when defaults were used).
func (c *Config) Path() string { return c.path }

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.proposal).
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".proposal"), nil
}

// Load reads the config from the config dir. A missing file is not an error;
// defaults are returned instead.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

func LoadDir(dir string) (*Config, error) {
	for _, f := range fileNames {
		path := filepath.Join(dir, f.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		cfg, err := Parse(data, f.format)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.path = path
		cfg.format = f.format
		return cfg, nil
	}
	cfg := &Config{path: filepath.Join(dir, "config.yaml"), format: FormatYAML}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Parse decodes data in the given format and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

func Marshal(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return yaml.Marshal(cfg)
	}
}

// Save writes cfg back to the file it came from, in the same format.
func Save(cfg *Config) error {
	path, format := cfg.path, cfg.format
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path, format = filepath.Join(dir, "config.yaml"), FormatYAML
	}
	data, err := Marshal(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// Unique temp name + rename so concurrent CLI/TUI/server writers never see a torn file.
	return WriteFileAtomic(dir, filepath.Base(path)+".*.tmp", path, data, 0o600)
}

func WriteFileAtomic(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
