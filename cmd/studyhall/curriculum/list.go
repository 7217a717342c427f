package curriculumcmder

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/plan"
	"github.com/studyhallco/studyhall/pkg/utils"
)

func newListCmd(cmder *curriculumCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List study plans saved on this machine",
		Args:    cobra.NoArgs,
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	configDir, _ := cmd.Flags().GetString("config-dir")
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return fmt.Errorf("resolving plans directory: %w", err)
	}

	plans, err := plan.List(plan.Dir(dir))
	if err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}

	if len(plans) == 0 {
		fmt.Fprintln(out, "No plans yet. Generate one with: studyhall curriculum generate \"<goal>\"")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGOAL\tWEEKS\tCREATED")

	for _, p := range plans {
		goal := strings.ReplaceAll(p.Meta.Goal, "\n", " ")
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			utils.Truncate(p.Meta.ID, 8),
			utils.Truncate(goal, 60),
			p.Meta.Weeks,
			p.Meta.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	return w.Flush()
}
