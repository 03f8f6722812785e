package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/canopy/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Describe the tree and its nodes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd, args)
		if err != nil {
			return err
		}
		markdown := tui.Describe(engine.Spec(), engine.Tree())

		raw, _ := cmd.Flags().GetBool("raw")
		out := cmd.OutOrStdout()
		if raw || !tui.IsTerminal(out) {
			fmt.Fprint(out, markdown)
			return nil
		}
		rendered, err := tui.NewRenderer(true)(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
