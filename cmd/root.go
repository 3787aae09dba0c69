package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tutordesk",
	Short: "Telegram assistant for private tutors",
	Long:  "TutorDesk — Telegram bot that manages a tutor's students and generates study documents with an LLM, keeping a cumulative per-student report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
