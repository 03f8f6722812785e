package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy drives agents over behavior trees",
	Long: `Canopy loads a behavior tree from a YAML or JSON file (or a redis store),
ticks any number of agents over it and exposes the result on the terminal or over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "tree.yaml", "Tree definition file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default off)")
	rootCmd.PersistentFlags().String("redis", "", "Load the tree from redis (redis://host:port/db) instead of --file")
	rootCmd.PersistentFlags().String("tree-id", "", "Stored tree id (default: --file base name)")
}

// engineOptions reads the persistent flags. A positional argument overrides --file.
func engineOptions(cmd *cobra.Command, args []string) (cli.EngineOptions, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("file")
	if !cmd.Flags().Changed("file") && len(args) > 0 {
		path = args[0]
	}
	level, _ := cmd.Flags().GetString("log-level")
	redisURL, _ := cmd.Flags().GetString("redis")
	treeID, _ := cmd.Flags().GetString("tree-id")

	logger, err := cli.CreateLogger(level)
	if err != nil {
		return cli.EngineOptions{}, nil, err
	}
	return cli.EngineOptions{Path: path, RedisURL: redisURL, TreeID: treeID}, logger, nil
}

func loadEngine(cmd *cobra.Command, args []string) (*canopy.Engine, error) {
	opts, logger, err := engineOptions(cmd, args)
	if err != nil {
		return nil, err
	}
	return cli.CreateEngine(opts, logger)
}
