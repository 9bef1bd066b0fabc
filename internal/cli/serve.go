package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/soyeahso/assistloop/internal/gateway"
	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/observability"
	"github.com/soyeahso/assistloop/internal/plugin"
	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the widget and admin gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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

			metrics := observability.NewMetrics()
			bridge := settings.NewBridge(params, log,
				settings.WithHooks(hookMgr),
				settings.WithMetrics(metrics),
			)

			srv := gateway.New(cfg, bridge, log,
				gateway.WithHooks(hookMgr),
				gateway.WithMetrics(metrics),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
