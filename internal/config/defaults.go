package config

import "strings"

const (
	DefaultBackend    = "sqlite"
	DefaultLogLevel   = "warn"
	DefaultDebounceMS = 300
	DefaultServerAddr = "127.0.0.1:7788"
	DefaultPreviewW   = 80
	DefaultStyle      = "auto"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Editor.DebounceMS <= 0 {
		cfg.Editor.DebounceMS = DefaultDebounceMS
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Preview.Width <= 0 {
		cfg.Preview.Width = DefaultPreviewW
	}
	if strings.TrimSpace(cfg.Preview.Style) == "" {
		cfg.Preview.Style = DefaultStyle
	}
}
