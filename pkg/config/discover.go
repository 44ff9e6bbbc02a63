package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Discovered is a settings file found on disk, or the defaults when none
// was found.
type Discovered struct {
	Config Config
	Root   string // Directory containing .chatlayout ("" when not found)
	Path   string // Settings file path ("" when not found)
}

// ResolvePath resolves a path from the settings relative to Root.
func (d Discovered) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || d.Root == "" {
		return p
	}
	return filepath.Join(d.Root, p)
}

// LoadDefault finds the settings for the current directory. A missing file
// yields the defaults; an unreadable or invalid one is an error.
func LoadDefault() (Discovered, error) {
	dir, err := os.Getwd()
	if err != nil {
		return Discovered{Config: Default()}, nil
	}
	return LoadFrom(dir)
}

// LoadFrom finds the settings for dir by walking up from it.
func LoadFrom(dir string) (Discovered, error) {
	root, ok := findRoot(dir)
	if !ok {
		return Discovered{Config: Default()}, nil
	}
	path := filepath.Join(root, DirName, FileName)
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: %s has no %s, using defaults", filepath.Join(root, DirName), FileName)
			return Discovered{Config: Default(), Root: root}, nil
		}
		return Discovered{}, err
	}
	return Discovered{Config: cfg, Root: root, Path: path}, nil
}

// findRoot walks up from dir looking for a .chatlayout/ directory.
func findRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		settingsDir := filepath.Join(dir, DirName)
		if info, err := os.Stat(settingsDir); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}
