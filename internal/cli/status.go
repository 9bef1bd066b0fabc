package cli

import (
	"fmt"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/soyeahso/assistloop/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show paths, service config and the widget state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", version.Info())
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n\n", paths.Data)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "Gateway: port=%d bind=%s auth=%s tls=%v metrics=%v\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode,
				cfg.Gateway.TLS.Enabled, cfg.Gateway.Metrics)

			storeDesc := cfg.Store.Driver
			switch cfg.Store.Driver {
			case config.DriverSQLite:
				storeDesc += " path=" + paths.SQLitePath(cfg.Store)
			case config.DriverPostgres:
				storeDesc += " table=" + cfg.Store.Table
			}
			fmt.Fprintf(out, "Store:   %s\n", storeDesc)
			fmt.Fprintf(out, "Plugins: validate=%v audit=%v\n", cfg.Plugins.Validate, cfg.Plugins.Audit)

			if issues := config.Validate(&cfg); len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
				return nil
			}

			return withBridge(cmd.Context(), func(b *settings.Bridge) error {
				w := b.LoadRenderConfig(cmd.Context())
				state := "hidden"
				switch {
				case w.Visible(false):
					state = "visible on all pages"
				case w.Visible(true):
					state = "visible on opted-in pages"
				}
				fmt.Fprintf(out, "Widget:  %s (agent=%q position=%s)\n", state, w.AgentID, w.Position)
				return nil
			})
		},
	}
}
