package curriculumcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/plan"
)

type generateCommander struct {
	cmder *curriculumCommander

	weeks   int
	preview bool
}

const generateLongDesc string = `Ask the mentor to generate a week-by-week study plan for a goal.

The plan streams to the terminal as the mentor writes it, then renders
as markdown. Unless --preview is set, the finished plan is saved as a
markdown file under the studyhall dot directory where "curriculum list"
finds it. The server keeps its own copy either way.

Examples:
  studyhall curriculum generate "pass the networking final"
  studyhall curriculum generate "learn linear algebra" --weeks 6
  studyhall curriculum generate "ship a CLI in Go" --preview`

func newGenerateCmd(cmder *curriculumCommander) *cobra.Command {
	gen := &generateCommander{cmder: cmder}

	cmd := &cobra.Command{
		Use:     "generate <goal>",
		Short:   "Generate a study plan toward a goal",
		Long:    generateLongDesc,
		Args:    cobra.ExactArgs(1),
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gen.run(cmd, args[0])
		},
	}

	cmd.Flags().IntVarP(&gen.weeks, "weeks", "w", 4, "Number of weeks the plan should cover")
	cmd.Flags().BoolVar(&gen.preview, "preview", false, "Show the generated plan without saving it")

	return cmd
}

func (g *generateCommander) run(cmd *cobra.Command, goal string) error {
	w := cmd.OutOrStdout()

	cl, err := g.cmder.newClient(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nGenerating a %d-week study plan for %q\n\n", g.weeks, goal)

	result, err := cl.GenerateCurriculum(cmd.Context(), client.PlanRequest{
		Goal:  goal,
		Weeks: g.weeks,
	}, func(chunk client.Chunk) error {
		if chunk.Type == mentor.ChunkDelta {
			fmt.Fprint(w, chunk.Text)
		}
		return nil
	})
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return fmt.Errorf("generating plan: %w", err)
	}

	// Re-render the assembled document through glamour; the raw stream
	// above already showed it once, so a render failure just skips the
	// pretty copy.
	fmt.Fprintln(w)
	if rendered, renderErr := cliui.RenderMarkdown(result.Markdown); renderErr == nil {
		fmt.Fprint(w, rendered)
	}

	if g.preview {
		return nil
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return fmt.Errorf("resolving plans directory: %w", err)
	}

	file := plan.NewFile(g.cmder.sessionLearner(cmd), goal, g.weeks, result.Markdown)
	path, err := plan.Write(file, plan.Dir(dir))
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	fmt.Fprintf(w, "\n  Saved to %s\n", path)
	fmt.Fprintf(w, "  Run 'studyhall curriculum list' to browse saved plans\n\n")
	return nil
}
