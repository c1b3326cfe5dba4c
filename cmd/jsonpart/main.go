package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsonpart",
		Short: "Parallel JSON partitioning engine",
	}

	rootCmd.AddCommand(newPartitionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
