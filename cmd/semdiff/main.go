package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "semdiff",
	Short: "Hybrid structural and semantic JSON comparison tool",
	Long: `Semdiff compares two JSON documents and reports which changes are
structurally meaningful and which are merely rewordings of the same meaning,
using vector embeddings to score string changes.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
