// Package studyhallcmder
package studyhallcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/studyhallco/studyhall/cmd/studyhall/auth"
	chatcmder "github.com/studyhallco/studyhall/cmd/studyhall/chat"
	checkincmder "github.com/studyhallco/studyhall/cmd/studyhall/checkin"
	configcmder "github.com/studyhallco/studyhall/cmd/studyhall/config"
	curriculumcmder "github.com/studyhallco/studyhall/cmd/studyhall/curriculum"
	importcmder "github.com/studyhallco/studyhall/cmd/studyhall/import"
	initcmder "github.com/studyhallco/studyhall/cmd/studyhall/init"
	notecmder "github.com/studyhallco/studyhall/cmd/studyhall/note"
	quizcmder "github.com/studyhallco/studyhall/cmd/studyhall/quiz"
	recallcmder "github.com/studyhallco/studyhall/cmd/studyhall/recall"
	seedcmder "github.com/studyhallco/studyhall/cmd/studyhall/seed"
	servecmder "github.com/studyhallco/studyhall/cmd/studyhall/serve"
	statscmder "github.com/studyhallco/studyhall/cmd/studyhall/stats"
	statuscmder "github.com/studyhallco/studyhall/cmd/studyhall/status"
	threadcmder "github.com/studyhallco/studyhall/cmd/studyhall/thread"
	versioncmder "github.com/studyhallco/studyhall/cmd/version"
)

const studyhallLongDesc string = `Studyhall is a self-paced learning companion.

Talk to the mentor, take quizzes, and track your study habits:
  studyhall auth login           Sign in to a studyhall server
  studyhall chat                 Chat with the mentor (streams, resumes)
  studyhall quiz take <slug>     Take a quiz in the terminal
  studyhall checkin              Record mood and energy for today
  studyhall curriculum generate  Generate a study plan
  studyhall stats                See your learning stats

Run the server with:
  studyhall serve                Run the API server`

const studyhallShortDesc string = "Studyhall - Learning Companion"

func NewStudyhallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studyhall",
		Short: studyhallShortDesc,
		Long:  studyhallLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .studyhall config directory")

	// Add subcommands
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(checkincmder.NewCheckinCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(curriculumcmder.NewCurriculumCmd())
	cmd.AddCommand(importcmder.NewImportCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(notecmder.NewNoteCmd())
	cmd.AddCommand(quizcmder.NewQuizCmd())
	cmd.AddCommand(recallcmder.NewRecallCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(threadcmder.NewThreadCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
