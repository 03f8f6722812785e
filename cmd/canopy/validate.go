package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the tree definition",
	Long:  `Builds and compiles the tree, reporting unknown kinds, bad config, dangling children and cycles.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd, args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tree %q is valid (%d nodes) ✅\n", engine.Name(), engine.Tree().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
