package main

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/billed/internal/config"
	"github.com/mmynk/billed/pkg/logging"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "billed",
		Short: "Employee expense reports",
		Long: `Billed lets employees list their expense reports, look at receipts
and submit new bills.

Commands:
  serve    Start the web UI, the bill API and /metrics
  user     Manage accounts
  seed     Load sample bills for an employee
  config   Write a starter configuration file`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file loaded before the environment (default ./.env)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newUserCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// load reads the configuration and sets up logging. overrides are
// dot-notated keys set by command flags.
func (o *rootOptions) load(overrides map[string]any) (config.Config, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if o.logLevel != "" {
		overrides["log.level"] = o.logLevel
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigPath:    o.configPath,
		EnvFile:       o.envFile,
		FlagOverrides: overrides,
	})
	if err != nil {
		return config.Config{}, err
	}
	logging.Setup(cfg.Log.Level)
	return cfg, nil
}
