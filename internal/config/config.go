package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional offload configuration file.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Defaults DefaultsConfig `toml:"defaults"`
	Devices  []DeviceConfig `toml:"device"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Workers   *int    `toml:"workers"`
	Hash      *string `toml:"hash"`
	Overwrite *bool   `toml:"overwrite"`
	DateToken *string `toml:"date_token"`
}

// DeviceConfig describes one ingestion profile: a memory card identified by
// a sentinel marker file and the jobs to run when it is present.
type DeviceConfig struct {
	Name   string      `toml:"name"`
	Marker string      `toml:"marker"`
	Jobs   []JobConfig `toml:"job"`
}

// JobConfig describes a single suffix-filtered copy from a source tree into
// a target template.
type JobConfig struct {
	Source   string   `toml:"source"`
	Target   string   `toml:"target"`
	Suffix   string   `toml:"suffix"`
	Preserve []string `toml:"preserve"`
}

// MarkerPresent reports whether the device's sentinel marker path exists.
// Devices without a marker are never auto-detected.
func (d DeviceConfig) MarkerPresent() bool {
	if d.Marker == "" {
		return false
	}
	_, err := os.Stat(d.Marker)
	return err == nil
}

// Device returns the named device profile.
func (c Config) Device(name string) (DeviceConfig, bool) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return DeviceConfig{}, false
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "offload", "config.toml")
}

// Load reads the config file at path, falling back to the XDG path when
// path is empty. Returns a zero Config (no error) if the file does not
// exist. Config is always optional.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return Config{}, nil
		}
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if d.Name == "" {
			return errors.New("device without a name")
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("duplicate device %q", d.Name)
		}
		seen[d.Name] = struct{}{}

		for i, j := range d.Jobs {
			if j.Source == "" || j.Target == "" || j.Suffix == "" {
				return fmt.Errorf("device %q job %d: source, target and suffix are required", d.Name, i+1)
			}
		}
	}
	return nil
}
