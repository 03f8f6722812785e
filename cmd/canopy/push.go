package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/canopy/internal/cli"
)

var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Validate a tree file and publish it to a store",
	Long: `Saves the tree to redis (--redis) or to a directory store (--dir). Trees that do not
build are rejected. Agents served from the store pick up the new version when watching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engineOpts, logger, err := engineOptions(cmd, args)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")

		id, err := cli.Push(cmd.Context(), cli.PushOptions{
			Path:     engineOpts.Path,
			RedisURL: engineOpts.RedisURL,
			Dir:      dir,
			TreeID:   engineOpts.TreeID,
		}, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tree %q pushed\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().String("dir", ".canopy/trees", "Directory store used when --redis is not set")
}
