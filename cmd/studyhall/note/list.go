package notecmder

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/notes"
	"github.com/studyhallco/studyhall/pkg/utils"
)

type listCommander struct {
	turn string
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.turn, "turn", "t", "", "Only notes pinned to this turn hash")

	return cmd
}

func (c *listCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	driver, err := openNotes(configDir)
	if err != nil {
		return err
	}
	defer func() { _ = driver.Close() }()

	var listed []notes.Note
	if c.turn != "" {
		listed, err = driver.ByTurn(cmd.Context(), c.turn)
	} else {
		listed, err = driver.List(cmd.Context())
	}
	if err != nil {
		return err
	}

	if len(listed) == 0 {
		if c.turn != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No notes pinned to %s\n", c.turn)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), `No notes yet. Capture one with: studyhall note add "<text>"`)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTURN\tNOTE")
	for _, note := range listed {
		turn := "-"
		if note.TurnHash != "" {
			turn = utils.Truncate(note.TurnHash, 8)
		}
		text := strings.ReplaceAll(note.Text, "\n", " ")
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			note.CreatedAt.Local().Format("2006-01-02 15:04"),
			turn,
			text,
		)
	}
	return w.Flush()
}
