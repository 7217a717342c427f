// Package notecmder implements the note commands.
package notecmder

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/notes/local"
)

const noteLongDesc string = `Capture and review short study takeaways.

A note is one lesson worth keeping: "flip the second fraction when
dividing". Notes live in the resolved .studyhall/ directory next to the
rest of the local state, and can be pinned to the mentor conversation
turn that prompted them.

Examples:
  studyhall note add "flip the second fraction when dividing"
  studyhall note add --turn ab12cd34ef56 "distribute before collecting terms"
  studyhall note list
  studyhall note list --turn ab12cd34ef56`

// notesFile is the notes store inside the resolved .studyhall/ directory.
const notesFile = "notes.json"

// NewNoteCmd creates the parent note command.
func NewNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Capture and review study notes",
		Long:  noteLongDesc,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func openNotes(configDir string) (*local.Driver, error) {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, err
	}
	return local.NewDriver(local.Config{Path: filepath.Join(dir, notesFile)})
}
