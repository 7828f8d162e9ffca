package toolcatalog

import "fmt"

// Dispatcher command ids understood by the vault host
const (
	CommandReadFile        = "read_file"
	CommandWriteFile       = "write_file"
	CommandAppendFile      = "append_file"
	CommandDeleteFile      = "delete_file"
	CommandCreateDirectory = "create_directory"
	CommandRenameFile      = "rename_file"
	CommandMoveFile        = "move_file"
	CommandFileExists      = "file_exists"
	CommandStatPath        = "stat_path"
	CommandReadDirectory   = "read_directory"
)

// NewVaultCatalog returns a catalog populated with the builtin note and
// folder tools backed by the vault file commands.
func NewVaultCatalog() *Catalog {
	c := New()

	specs := []ToolSpec{
		{
			ID:          "read_note",
			CommandID:   CommandReadFile,
			Description: "Read the content of a note",
			ReadOnly:    true,
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to the note", Required: true},
			},
		},
		{
			ID:          "write_note",
			CommandID:   CommandWriteFile,
			Description: "Write content to a note, creating it if needed",
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to the note", Required: true},
				{Name: "content", Type: "string", Description: "New note content", Required: true},
			},
		},
		{
			ID:          "append_note",
			CommandID:   CommandAppendFile,
			Description: "Append content to the end of a note",
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to the note", Required: true},
				{Name: "content", Type: "string", Description: "Content to append", Required: true},
			},
		},
		{
			ID:          "delete_note",
			CommandID:   CommandDeleteFile,
			Description: "Delete a note or folder",
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to delete", Required: true},
			},
		},
		{
			ID:          "create_folder",
			CommandID:   CommandCreateDirectory,
			Description: "Create a folder, including missing parents",
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Folder path", Required: true},
			},
		},
		{
			ID:          "rename_note",
			CommandID:   CommandRenameFile,
			Description: "Rename a note",
			Params: []ParamSpec{
				{Name: "old_path", Type: "string", Description: "Current path", Required: true},
				{Name: "new_path", Type: "string", Description: "New path", Required: true},
			},
		},
		{
			ID:          "move_note",
			CommandID:   CommandMoveFile,
			Description: "Move a note to another folder",
			Params: []ParamSpec{
				{Name: "source", Type: "string", Description: "Source path", Required: true},
				{Name: "destination", Type: "string", Description: "Destination path", Required: true},
			},
		},
		{
			ID:          "list_notes",
			CommandID:   CommandReadDirectory,
			Description: "List the notes under a folder",
			ReadOnly:    true,
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Folder path", Required: true},
				{Name: "recursive", Type: "boolean", Description: "Descend into subfolders", Required: false},
			},
		},
		{
			ID:          "note_exists",
			CommandID:   CommandFileExists,
			Description: "Check whether a note exists",
			ReadOnly:    true,
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to check", Required: true},
			},
		},
		{
			ID:          "stat_note",
			CommandID:   CommandStatPath,
			Description: "Get note metadata without reading its content",
			ReadOnly:    true,
			Params: []ParamSpec{
				{Name: "path", Type: "string", Description: "Path to inspect", Required: true},
			},
		},
	}

	for _, spec := range specs {
		if err := c.Register(spec); err != nil {
			// builtin specs are static; a failure here is a programming error
			panic(fmt.Sprintf("builtin tool %s: %v", spec.ID, err))
		}
	}

	return c
}
