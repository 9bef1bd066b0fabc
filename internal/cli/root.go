package cli

import (
	"fmt"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// set by PersistentPreRunE
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistloop",
		Short: "AssistLoop chat widget settings service",
		Long: "assistloop stores the AssistLoop chat widget settings in a configuration " +
			"parameter store and serves them to storefront pages and admin clients.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.assistloop/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig loads and validates the config file, then rebuilds the logger
// from the logging section unless --log-level was given.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	log = logging.NewStyled(nil, level, cfg.Logging.ConsoleStyle)
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil && log != nil {
		log.Error().Err(err).Msg("command failed")
	}
	return err
}
