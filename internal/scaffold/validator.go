package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckExisting returns an error if dir already holds a kitbash.yml
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
		return fmt.Errorf("workshop already initialized\n\nFound existing: %s\n\nUse 'kitbash init --force' to reinitialize (this will overwrite existing configuration)", ConfigFile)
	}

	return nil
}
