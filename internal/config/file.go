package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const defaultConfigFile = "~/.config/silk2mp3/config.toml"

// LoadFile decodes the TOML file at path into cfg. An empty path falls back
// to ~/.config/silk2mp3/config.toml, which is optional; an explicit path must
// exist. Keys absent from the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	resolved, err := expandPath(path)
	if err != nil {
		// No home directory means no default config.
		if !explicit {
			return nil
		}
		return err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", resolved, err)
	}
	cfg.ConfigFile = resolved
	return nil
}

func expandPath(pathValue string) (string, error) {
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}
