package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileEntry describes one directory listing entry. Children is populated for
// directories when listing recursively.
type FileEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsDir    bool        `json:"is_dir"`
	Size     int64       `json:"size"`
	Modified int64       `json:"modified"`
	Children []FileEntry `json:"children,omitempty"`
}

// FileMetadata describes a path without reading its content
type FileMetadata struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	IsFile   bool   `json:"is_file"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"`
	Exists   bool   `json:"exists"`
}

// VaultDispatcher executes vault file commands against a single root
// directory. Paths in arguments are interpreted relative to the root; paths
// that resolve outside it are rejected.
type VaultDispatcher struct {
	root   string
	logger zerolog.Logger
}

// NewVaultDispatcher creates a dispatcher rooted at the given vault directory
func NewVaultDispatcher(root string) (*VaultDispatcher, error) {
	if root == "" {
		return nil, fmt.Errorf("vault root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", abs)
	}

	return &VaultDispatcher{
		root:   abs,
		logger: log.With().Str("component", "vault_dispatcher").Logger(),
	}, nil
}

// Root returns the absolute vault root directory
func (d *VaultDispatcher) Root() string {
	return d.root
}

// Execute runs a single vault command
func (d *VaultDispatcher) Execute(ctx context.Context, commandID, source string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("command", commandID).
		Str("source", source).
		Int("args", len(args)).
		Msg("Dispatching command")

	switch commandID {
	case "read_file":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil

	case "write_file":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, 1)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write file: %w", err)
		}
		return nil, nil

	case "append_file":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, 1)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return nil, fmt.Errorf("failed to append to file: %w", err)
		}
		return nil, nil

	case "delete_file":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to delete: %w", err)
		}
		if info.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to delete: %w", err)
		}
		return nil, nil

	case "create_directory":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		return nil, nil

	case "rename_file", "move_file":
		oldPath, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		newPath, err := d.pathArg(args, 1)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return nil, fmt.Errorf("failed to rename: %w", err)
		}
		return nil, nil

	case "file_exists":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(path)
		return statErr == nil, nil

	case "stat_path":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		return statPath(path), nil

	case "read_directory":
		path, err := d.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		recursive, err := boolArg(args, 1, true)
		if err != nil {
			return nil, err
		}
		return readDirectory(path, recursive)

	default:
		return nil, fmt.Errorf("unknown command: %s", commandID)
	}
}

// ReadResource implements the diff preview read path
func (d *VaultDispatcher) ReadResource(ctx context.Context, path string) (string, error) {
	result, err := d.Execute(ctx, "read_file", SourceAgent, path)
	if err != nil {
		return "", err
	}
	content, _ := result.(string)
	return content, nil
}

// pathArg resolves a positional string argument against the vault root
func (d *VaultDispatcher) pathArg(args []interface{}, idx int) (string, error) {
	raw, err := stringArg(args, idx)
	if err != nil {
		return "", err
	}
	return d.resolve(raw)
}

func (d *VaultDispatcher) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(d.root, candidate)
	}
	candidate = filepath.Clean(candidate)
	if candidate != d.root && !strings.HasPrefix(candidate, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes vault root: %s", path)
	}
	return candidate, nil
}

func stringArg(args []interface{}, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("missing argument at position %d", idx)
	}
	s, ok := args[idx].(string)
	if !ok {
		return "", fmt.Errorf("argument at position %d must be a string", idx)
	}
	return s, nil
}

// boolArg reads an optional positional boolean argument
func boolArg(args []interface{}, idx int, def bool) (bool, error) {
	if idx >= len(args) {
		return def, nil
	}
	b, ok := args[idx].(bool)
	if !ok {
		return false, fmt.Errorf("argument at position %d must be a boolean", idx)
	}
	return b, nil
}

func statPath(path string) FileMetadata {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{Name: name, Path: path}
	}
	return FileMetadata{
		Name:     name,
		Path:     path,
		IsDir:    info.IsDir(),
		IsFile:   info.Mode().IsRegular(),
		Size:     info.Size(),
		Modified: info.ModTime().Unix(),
		Exists:   true,
	}
}

func readDirectory(path string, recursive bool) ([]FileEntry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]FileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entry := FileEntry{
			Name:     de.Name(),
			Path:     filepath.Join(path, de.Name()),
			IsDir:    de.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
		}
		if recursive && de.IsDir() {
			// an unreadable subtree yields an entry without children
			if children, err := readDirectory(entry.Path, true); err == nil {
				entry.Children = children
			}
		}
		entries = append(entries, entry)
	}

	// Folders first, then case-insensitive by name
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return entries, nil
}
