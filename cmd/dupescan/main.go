package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "dupescan",
		Short:   "Find duplicate files",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newScanCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newPruneCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
