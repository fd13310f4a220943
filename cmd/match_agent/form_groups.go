package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/group-matcher/internal/engine"
	"github.com/jonathan/group-matcher/internal/types"
)

var formGroupsCommand = &cobra.Command{
	Use:   "form-groups",
	Short: "Form new groups from students no existing group could take",
	Long: `Splits the remaining unassigned students of each major into balanced new
groups within the semester's size policy. Each new group gets a leader (the
alphabetically first member) and drafts a role-balanced roster.`,
	RunE: runFormGroupsCmd,
}

var formGroupsFlags phaseFlags

func init() {
	formGroupsFlags.register(formGroupsCommand)
	rootCmd.AddCommand(formGroupsCommand)
}

func runFormGroupsCmd(cmd *cobra.Command, _ []string) error {
	return runPhase(cmd, &formGroupsFlags, func(ctx context.Context, eng *engine.Engine, semesterID, majorID string) (*types.AssignResult, error) {
		return eng.CreateGroupsFromLeftovers(ctx, semesterID, majorID)
	})
}
