package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/cmd/satchel/commands"
	"github.com/satchelhq/satchel/config"
	"github.com/satchelhq/satchel/logger"
)

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "satchel - Redis-backed content store",
	Long: `satchel - a content store for bags, recipes, tiddlers, and users
persisted on a plain Redis key space.

Available commands:
  bag     - Manage bags (containers of tiddlers)
  recipe  - Manage recipes (ordered compositions of bags)
  tiddler - Manage tiddlers (versioned documents)
  user    - Manage users
  version - Show version information

Examples:
  satchel bag put mybag --desc "scratch space"
  satchel tiddler put mybag notes --text "remember the milk"
  satchel tiddler revisions mybag notes
  satchel recipe ls`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&commands.JSONOutput, "json", false, "Render entities as JSON instead of YAML")

	rootCmd.AddCommand(commands.BagCmd)
	rootCmd.AddCommand(commands.RecipeCmd)
	rootCmd.AddCommand(commands.TiddlerCmd)
	rootCmd.AddCommand(commands.UserCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
