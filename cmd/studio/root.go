package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dinosave/remix-studio/internal/config"
)

// commandContext lazily loads configuration shared by every subcommand.
type commandContext struct {
	configFlag *string
	cfg        config.Config
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var (
		cfg *config.EnvConfig
		err error
	)
	if *c.configFlag != "" {
		cfg, err = config.Load(*c.configFlag)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "studio",
		Short:         "Video remix studio server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (overrides "+config.EnvConfigFile+")")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the studio version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "studio %s (commit %s, built %s)\n",
				config.Version, config.GitCommit, config.BuildTime)
			return nil
		},
	}
}
