package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors secretsweep.yaml. Pointer fields distinguish "unset"
// from zero values so CLI > local > global precedence can be resolved.
type FileConfig struct {
	FailOn       *string `yaml:"fail_on"`
	MinSeverity  *string `yaml:"min_severity"`
	NoColor      *bool   `yaml:"no_color"`
	NoClipboard  *bool   `yaml:"no_clipboard"`
	MaskPreviews *bool   `yaml:"mask_previews"`
	IgnoreFile   *string `yaml:"ignore_file"`
	Timeout      *string `yaml:"timeout"`
	Addr         *string `yaml:"addr"`
	ChromePath   *string `yaml:"chrome_path"`
}

var localNames = []string{".secretsweep.yaml", ".secretsweep.yml", "secretsweep.yaml", "secretsweep.yml"}

var errNotFound = errors.New("config not found")

func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal loads the first config file found in dir, dotfiles first.
func LoadLocal(dir string) (FileConfig, error) {
	for _, name := range localNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, fmt.Errorf("%w in %s", errNotFound, dir)
}

// LoadGlobal loads $XDG_CONFIG_HOME/secretsweep/config.y{a,}ml, falling
// back to ~/.config.
func LoadGlobal() (FileConfig, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return FileConfig{}, fmt.Errorf("%w: no XDG_CONFIG_HOME or HOME", errNotFound)
		}
		base = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(base, "secretsweep", name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, fmt.Errorf("%w in %s", errNotFound, filepath.Join(base, "secretsweep"))
}
