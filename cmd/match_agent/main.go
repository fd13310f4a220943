// Package main provides the entry point for the group matching CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match_agent",
	Short: "Group matching and auto-assignment engine",
	Long:  "Match Agent staffs under-capacity project groups, forms new groups from leftover students, and pairs groups with topics for a semester, optionally assisted by AI ranking and semantic search.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
