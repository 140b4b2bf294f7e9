package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"crosswarped.com/valence/pkg/config"
	"crosswarped.com/valence/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what the root command loads for its subcommands.
type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "valencecli",
		Short:        "Compile valence rulesets and solve module placements on cluster graphs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.logLevel != "" {
				if _, err := logging.ParseLevel(c.logLevel); err != nil {
					return err
				}
				cfg.Logging.Level = c.logLevel
			}
			cfg.Logging.Output = cmd.ErrOrStderr()
			c.cfg = cfg
			c.logger = logging.New(cfg.Logging)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML run configuration")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(newCompileCmd(c), newSolveCmd(c))
	return root
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
