package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

// RootKey is the required top-level section of the configuration file.
// A file without it is rejected with domain.ErrConfigLoad so callers can
// distinguish a malformed config from a missing one.
const RootKey = "agi_logger"

// DefaultPath returns the default configuration file location,
// cfg/configs.yaml under the current working directory.
func DefaultPath() string {
	return filepath.Join("cfg", "configs.yaml")
}

// Config is the top-level application configuration.
type Config struct {
	Logger  LoggerConfig  `yaml:"logger"`
	TCP     TCPConfig     `yaml:"tcp_file_communication"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracerConfig  `yaml:"tracing"`

	// path is the file the config was loaded from; relative paths inside
	// the file resolve against its directory.
	path string
}

// LoggerConfig holds the resolved recorder settings.
type LoggerConfig struct {
	Topics            []string `yaml:"topics"`
	BagPath           string   `yaml:"bag_path"`
	Name              string   `yaml:"name,omitempty"`
	MCAP              bool     `yaml:"mcap"`
	Compress          bool     `yaml:"compress"`
	OverrideQoS       bool     `yaml:"override_qos"`
	QoSSettings       string   `yaml:"qos_settings,omitempty"`
	DurationMinutes   float64  `yaml:"duration"`
	MaxBagSizeGB      float64  `yaml:"max_bag_size"`
	AutoStart         bool     `yaml:"auto_start"`
	AutoStartBehavior string   `yaml:"auto_start_behavior,omitempty"`
}

// TCPConfig holds the file transfer settings for both endpoint roles.
type TCPConfig struct {
	Mode   string          `yaml:"mode,omitempty"` // ask | server | client
	Server TCPServerConfig `yaml:"server"`
	Client TCPClientConfig `yaml:"client"`
}

// TCPServerConfig configures the sending endpoint.
type TCPServerConfig struct {
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port"`
	FilePath  string  `yaml:"file_path"`
	LimitMbps float64 `yaml:"limit_mbps,omitempty"` // 0 = unlimited
	Advertise bool    `yaml:"advertise,omitempty"`  // mDNS advertisement
}

// TCPClientConfig configures the receiving endpoint.
type TCPClientConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	DestinationPath string `yaml:"destination_path"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
	Output string `yaml:"output,omitempty"` // stdout, stderr, or a file path
}

// TracerConfig configures OpenTelemetry tracing.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter,omitempty"` // stdout or noop
}

// document mirrors the on-disk layout: everything nested under RootKey.
type document struct {
	AGILogger Config `yaml:"agi_logger"`
}

// Defaults returns a Config with conservative defaults. Load starts from
// these so a sparse file still yields a usable configuration.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			BagPath:           "~/agi_bags",
			AutoStartBehavior: "toggle_arm",
		},
		TCP: TCPConfig{
			Mode:   "ask",
			Server: TCPServerConfig{Host: "0.0.0.0", Port: 6000},
			Client: TCPClientConfig{Host: "localhost", Port: 6000, DestinationPath: "."},
		},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// Load reads and validates the configuration file at path. The file must
// contain the agi_logger root section; its absence is a domain.ErrConfigLoad.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainError("Config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("config file not found: %s", path))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewDomainError("Config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("parse %s: %v", path, err))
	}
	if _, ok := raw[RootKey]; !ok {
		return nil, domain.NewDomainError("Config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("missing %q root key in %s", RootKey, path))
	}

	doc := document{AGILogger: *Defaults()}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewDomainError("Config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("parse %s: %v", path, err))
	}

	cfg := doc.AGILogger
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.path = absPath
	cfg.resolvePaths()
	return &cfg, nil
}

// Writes go through SaveRaw on the generic document so unknown keys survive
// an edit; there is no typed save path.

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// BaseDir returns the directory relative paths resolve against.
func (c *Config) BaseDir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// resolvePaths expands "~" and anchors relative paths to the config file's
// directory, matching how the recorder and the transfer endpoints consume
// them.
func (c *Config) resolvePaths() {
	base := c.BaseDir()
	c.Logger.BagPath = ExpandPath(c.Logger.BagPath, base)
	if c.Logger.QoSSettings != "" {
		c.Logger.QoSSettings = ExpandPath(c.Logger.QoSSettings, base)
	}
	if c.TCP.Server.FilePath != "" {
		c.TCP.Server.FilePath = ExpandPath(c.TCP.Server.FilePath, base)
	}
	if c.TCP.Client.DestinationPath != "" {
		c.TCP.Client.DestinationPath = ExpandPath(c.TCP.Client.DestinationPath, base)
	}
}

// ExpandPath expands a leading "~" to the user's home directory and anchors
// relative paths to baseDir.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return path
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path)
}
