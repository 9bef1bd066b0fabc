package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".assistloop"

// Paths holds resolved filesystem locations.
type Paths struct {
	Base   string // ~/.assistloop
	Config string // ~/.assistloop/config.yaml
	Data   string // ~/.assistloop/data
}

// ResolvePaths computes paths under the home directory, or under
// ASSISTLOOP_HOME when set.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("ASSISTLOOP_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates the base and data directories.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// SQLitePath returns the sqlite file to use for cfg, defaulting to
// <data>/assistloop.db.
func (p Paths) SQLitePath(cfg StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return filepath.Join(p.Data, "assistloop.db")
}
