// Package main is the entry point for the trpg-api server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trpg-api",
	Short: "TRPG turn engine server",
	Long:  `trpg-api runs turn-based role-playing sessions: it advances game state one turn per player message, resolves random events, and persists sessions with optimistic concurrency.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
