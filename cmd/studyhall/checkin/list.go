package checkincmder

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
)

func newListCmd(cmder *checkinCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List recorded check-ins, newest first",
		Args:    cobra.NoArgs,
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runList(cmd)
		},
	}
}

func (c *checkinCommander) runList(cmd *cobra.Command) error {
	cl, err := c.newClient(cmd)
	if err != nil {
		return err
	}

	checkIns, err := cl.CheckIns(cmd.Context())
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return err
	}

	if len(checkIns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No check-ins yet. Record one with: studyhall checkin --mood 3 --energy 3")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tMOOD\tENERGY\tNOTE")
	for _, checkIn := range checkIns {
		note := strings.ReplaceAll(checkIn.Note, "\n", " ")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			checkIn.RecordedAt.Local().Format("2006-01-02 15:04"),
			scaleBar(checkIn.Mood),
			scaleBar(checkIn.Energy),
			note,
		)
	}
	return w.Flush()
}
