package notecmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/notes"
	"github.com/studyhallco/studyhall/pkg/utils"
)

type addCommander struct {
	turn string
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Record a study note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.turn, "turn", "t", "", "Turn hash to pin the note to (defaults to the checked-out head)")

	return cmd
}

func (c *addCommander) run(cmd *cobra.Command, text string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	driver, err := openNotes(configDir)
	if err != nil {
		return err
	}
	defer func() { _ = driver.Close() }()

	turnHash := strings.TrimSpace(c.turn)
	if turnHash == "" {
		// Pin to the checked-out head when there is one. A missing or
		// unreadable thread state just means an unpinned note.
		if state, stateErr := dotdir.NewManager().LoadThreadState(configDir); stateErr == nil && state != nil {
			turnHash = state.Head
		}
	}

	if err := driver.Add(cmd.Context(), notes.Note{
		TurnHash: turnHash,
		Text:     text,
	}); err != nil {
		return err
	}

	if turnHash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s Noted %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(pinned to %s)", utils.Truncate(turnHash, 8))),
		)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Noted\n", cliui.SuccessMark)
	return nil
}
