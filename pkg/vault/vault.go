// Package vault manages the on-disk note vault the plan executor operates
// on: locating it, bootstrapping the default vault, and watching it for
// changes.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const defaultVaultName = "Igne"

// DefaultPath returns the default vault location (~/Documents/Igne)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Documents", defaultVaultName), nil
}

// EnsureDefault creates the default vault if it does not exist, including
// its .obsidian config and a welcome note, and returns the vault path.
func EnsureDefault() (string, error) {
	path, err := DefaultPath()
	if err != nil {
		return "", err
	}
	if err := Ensure(path); err != nil {
		return "", err
	}
	return path, nil
}

// Ensure bootstraps a vault at the given path if it does not exist yet.
// An existing directory is left untouched.
func Ensure(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	obsidianDir := filepath.Join(path, ".obsidian")
	if err := os.MkdirAll(obsidianDir, 0755); err != nil {
		return fmt.Errorf("failed to create .obsidian directory: %w", err)
	}

	appConfig := `{
  "alwaysUpdateLinks": true,
  "newFileLocation": "root",
  "attachmentFolderPath": "attachments",
  "showLineNumber": true,
  "strictLineBreaks": false,
  "vimMode": false
}`
	if err := os.WriteFile(filepath.Join(obsidianDir, "app.json"), []byte(appConfig), 0644); err != nil {
		return fmt.Errorf("failed to write app.json: %w", err)
	}

	appearanceConfig := `{
  "baseFontSize": 16,
  "baseTheme": "dark",
  "accentColor": "#a78bfa",
  "translucency": false
}`
	if err := os.WriteFile(filepath.Join(obsidianDir, "appearance.json"), []byte(appearanceConfig), 0644); err != nil {
		return fmt.Errorf("failed to write appearance.json: %w", err)
	}

	welcome := `# Welcome to Igne

Igne is a fast, native markdown editor with Obsidian vault compatibility.

Start writing! Create your first note or edit this one.

---

*This is your default vault.*
`
	if err := os.WriteFile(filepath.Join(path, "Welcome.md"), []byte(welcome), 0644); err != nil {
		return fmt.Errorf("failed to write welcome note: %w", err)
	}

	log.Info().Str("path", path).Msg("Default vault created")

	return nil
}

// IsMarkdownFile reports whether the path names a markdown note
func IsMarkdownFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".markdown") ||
		strings.HasSuffix(lower, ".mdx")
}
