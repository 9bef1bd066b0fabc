package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/plugin"
	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the chat widget settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsParamsCmd())
	return cmd
}

// withBridge opens the configured store, runs fn with a bridge over it and
// closes the store. Enabled plugins apply to saves made here too.
func withBridge(ctx context.Context, fn func(*settings.Bridge) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	hookMgr := hooks.NewManager(log)
	plugins, err := plugin.Start(ctx, cfg.Plugins, hookMgr, log)
	if err != nil {
		return err
	}
	defer plugins.CloseAll()

	return fn(settings.NewBridge(params, log, settings.WithHooks(hookMgr)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSettingsShowCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the widget settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBridge(cmd.Context(), func(b *settings.Bridge) error {
				cfg := b.LoadFormValues(cmd.Context())
				if render {
					cfg = b.LoadRenderConfig(cmd.Context())
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "show the values pages receive (widget URL falls back to the CDN)")
	return cmd
}

var settingsFlagNames = []string{"agent-id", "enabled", "position", "widget-url", "show-on-all-pages"}

func newSettingsSetCmd() *cobra.Command {
	var flags settings.WidgetConfig

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change widget settings; fields without a flag keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			if !slices.ContainsFunc(settingsFlagNames, changed) {
				return fmt.Errorf("nothing to set; see --help")
			}

			return withBridge(cmd.Context(), func(b *settings.Bridge) error {
				cfg := b.LoadFormValues(cmd.Context())
				if changed("agent-id") {
					cfg.AgentID = flags.AgentID
				}
				if changed("enabled") {
					cfg.Enabled = flags.Enabled
				}
				if changed("position") {
					cfg.Position = flags.Position
				}
				if changed("widget-url") {
					cfg.WidgetURL = flags.WidgetURL
				}
				if changed("show-on-all-pages") {
					cfg.ShowOnAllPages = flags.ShowOnAllPages
				}

				if err := b.Save(cmd.Context(), cfg); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), b.LoadFormValues(cmd.Context()))
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.AgentID, "agent-id", "", "AssistLoop agent id; empty clears it")
	f.BoolVar(&flags.Enabled, "enabled", false, "enable the widget (--enabled=false disables)")
	f.StringVar(&flags.Position, "position", settings.PositionRight, "button position: right or left")
	f.StringVar(&flags.WidgetURL, "widget-url", "", "widget script URL; empty uses the CDN")
	f.BoolVar(&flags.ShowOnAllPages, "show-on-all-pages", true, "show on every page rather than only pages that opt in")
	return cmd
}

func newSettingsParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the raw widget parameters as stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBridge(cmd.Context(), func(b *settings.Bridge) error {
				params, err := b.Params(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range params {
					fmt.Fprintf(tw, "%s\t%s\n", p.Key, p.Value)
				}
				return tw.Flush()
			})
		},
	}
}
