package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notion",
	Short: "No-Tion note server and terminal client",
	Long: `No-Tion keeps per-user notes in memory and serves them over a
line-based TCP protocol. Note content is scrambled on write.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
