package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the service config file",
	}

	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(paths.Config); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if cfgFile == "" {
				if err := paths.EnsureDirs(); err != nil {
					return err
				}
			}

			cfg := config.Defaults()
			cfg.Gateway.Auth.Token = "${ASSISTLOOP_GATEWAY_TOKEN}"
			if err := config.Save(paths.Config, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths.Config)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			cfg.Gateway.Auth.Token = mask(cfg.Gateway.Auth.Token)
			cfg.Gateway.Auth.Password = mask(cfg.Gateway.Auth.Password)
			cfg.Store.DSN = mask(cfg.Store.DSN)

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			issues := config.Validate(&cfg)
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d validation issue(s)", len(issues))
			}
			fmt.Fprintln(out, "config OK")
			return nil
		},
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
