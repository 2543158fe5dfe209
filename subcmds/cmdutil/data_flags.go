// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

type DataFlags struct {
	dataDir string
}

func (f *DataFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "path to the data directory (default $HOME/.papertrade)")
}

// DataDir returns the absolute path to the data directory, creating it if
// necessary.
func (f *DataFlags) DataDir() (string, error) {
	dataDir := f.dataDir
	if len(dataDir) == 0 {
		dataDir = filepath.Join(os.Getenv("HOME"), ".papertrade")
	}
	if _, err := os.Stat(dataDir); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("could not stat data directory %q: %w", dataDir, err)
		}
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return "", fmt.Errorf("could not create data directory %q: %w", dataDir, err)
		}
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return "", fmt.Errorf("could not determine data-dir %q absolute path: %w", dataDir, err)
	}
	return abs, nil
}
