package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/group-matcher/internal/engine"
	"github.com/jonathan/group-matcher/internal/types"
)

var autoResolveCommand = &cobra.Command{
	Use:   "auto-resolve",
	Short: "Run all three assignment phases end-to-end",
	Long: `Orchestrates the full assignment process for a semester: staffing existing
under-capacity groups -> forming new groups from leftover students -> pairing
topicless groups with open topics.

Each phase's placements, created groups, topic assignments, and unresolved
items are merged into one combined result.`,
	RunE: runAutoResolveCmd,
}

var autoResolveFlags phaseFlags

func init() {
	autoResolveFlags.register(autoResolveCommand)
	rootCmd.AddCommand(autoResolveCommand)
}

func runAutoResolveCmd(cmd *cobra.Command, _ []string) error {
	return runPhase(cmd, &autoResolveFlags, func(ctx context.Context, eng *engine.Engine, semesterID, majorID string) (*types.AssignResult, error) {
		return eng.AutoResolve(ctx, semesterID, majorID)
	})
}
