package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/kitbash/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// ConfigFile is the name of the project configuration file
const ConfigFile = "kitbash.yml"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a starter kitbash.yml into dir.
// If force is true, an existing kitbash.yml is replaced.
func Initialize(dir string, force bool) error {
	if force {
		if err := handleForce(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return err
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	return validateCreatedFiles(dir)
}

// handleForce removes an existing kitbash.yml
func handleForce(dir string) error {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("⚠️  Removing existing %s...\n", ConfigFile)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", ConfigFile, err)
		}
	}

	return nil
}

// getTemplateFiles reads all template files
func getTemplateFiles(dir string) ([]FileInfo, error) {
	content, err := templatesFS.ReadFile("templates/kitbash.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s template: %w", ConfigFile, err)
	}

	return []FileInfo{{
		Path:        filepath.Join(dir, ConfigFile),
		Content:     content,
		Permissions: 0644,
	}}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks the written kitbash.yml loads cleanly
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		return fmt.Errorf("created %s is not valid: %w", ConfigFile, err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized kitbash workshop!")
	fmt.Println("\nCreated:")
	fmt.Printf("  ✓ %s\n", ConfigFile)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to describe your characters and players\n", ConfigFile)
	fmt.Println("  2. Run 'kitbash up' to start a local Redis")
	fmt.Printf("  3. Run 'kitbash seed %s' to load the catalog\n", ConfigFile)
}
