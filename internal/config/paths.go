package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".valet"

// Paths holds resolved filesystem paths for Valet data.
type Paths struct {
	Base   string // ~/.valet
	Config string // ~/.valet/config.yaml
	Logs   string // ~/.valet/logs
	Data   string // ~/.valet/data
}

// ResolvePaths computes all standard paths from the home directory.
// If VALET_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("VALET_HOME")
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
		Logs:   filepath.Join(base, "logs"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
