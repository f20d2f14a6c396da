package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads the file at path on top of the defaults. The decoder is chosen
// by extension: .yaml/.yml or .toml. Keys missing from the file keep their
// default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	log.WithField("caller", "config").WithField("path", path).Debug("config loaded")
	return cfg, nil
}

// Save writes cfg to path in the format its extension names.
func Save(path string, cfg *Config) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".toml":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if ext == ".toml" {
		return toml.NewEncoder(f).Encode(cfg)
	}
	encoder := yaml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

// WriteDefaultConfig writes the default configuration to path.
func WriteDefaultConfig(path string) error {
	return Save(path, Default())
}
