package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/canopy/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Tick agents over the tree",
	Long: `Spawns agents over the tree and ticks them in rounds, printing every agent's
status per round. Without --ticks it stops once all agents finish in the same round.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engineOpts, logger, err := engineOptions(cmd, args)
		if err != nil {
			return err
		}
		engineOpts.Concurrency, _ = cmd.Flags().GetInt("concurrency")

		opts := cli.RunOptions{EngineOptions: engineOpts}
		opts.Agents, _ = cmd.Flags().GetInt("agents")
		opts.Ticks, _ = cmd.Flags().GetInt("ticks")
		opts.Interval, _ = cmd.Flags().GetDuration("interval")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.Execute(sigCtx, opts, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("agents", "n", 1, "Number of agents to spawn")
	runCmd.Flags().IntP("ticks", "t", 0, "Stop after this many rounds (0: until all agents finish)")
	runCmd.Flags().Duration("interval", 0, "Pause between rounds")
	runCmd.Flags().Int("concurrency", 0, "Max agents ticked in parallel (0: unbounded)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the tree when its source changes")
	runCmd.Flags().Bool("json", false, "Print one JSON object per round")
}
