package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/canopy/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the tree visualization",
	Long:  `Compiles the tree and outputs a Mermaid diagram (graph TD) of it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd, args)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Tree(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
