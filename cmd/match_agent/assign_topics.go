package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/group-matcher/internal/engine"
	"github.com/jonathan/group-matcher/internal/types"
)

var assignTopicsCommand = &cobra.Command{
	Use:   "assign-topics",
	Short: "Pair topicless groups with the best-matching open topics",
	Long: `Gives each group without a topic its best-scoring open topic, consuming
topic capacity as it goes. Topics whose capacity is exhausted are closed, and
full groups with a mentor are activated.`,
	RunE: runAssignTopicsCmd,
}

var assignTopicsFlags phaseFlags

func init() {
	assignTopicsFlags.register(assignTopicsCommand)
	rootCmd.AddCommand(assignTopicsCommand)
}

func runAssignTopicsCmd(cmd *cobra.Command, _ []string) error {
	return runPhase(cmd, &assignTopicsFlags, func(ctx context.Context, eng *engine.Engine, semesterID, majorID string) (*types.AssignResult, error) {
		return eng.AssignTopics(ctx, semesterID, majorID)
	})
}
