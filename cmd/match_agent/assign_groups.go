package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/group-matcher/internal/engine"
	"github.com/jonathan/group-matcher/internal/types"
)

var assignGroupsCommand = &cobra.Command{
	Use:   "assign-groups",
	Short: "Staff existing under-capacity groups with unassigned students",
	Long: `Fills existing groups that still have open slots, neediest group first.
Candidates come from the group's own major, preferring the role the group is
short on; full groups have their recruitment posts closed and are activated
when a mentor is in place.`,
	RunE: runAssignGroupsCmd,
}

var assignGroupsFlags phaseFlags

func init() {
	assignGroupsFlags.register(assignGroupsCommand)
	rootCmd.AddCommand(assignGroupsCommand)
}

func runAssignGroupsCmd(cmd *cobra.Command, _ []string) error {
	return runPhase(cmd, &assignGroupsFlags, func(ctx context.Context, eng *engine.Engine, semesterID, majorID string) (*types.AssignResult, error) {
		return eng.AssignExistingGroups(ctx, semesterID, majorID)
	})
}
