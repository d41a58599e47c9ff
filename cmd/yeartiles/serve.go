package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/server"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdServeShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx)
		},
	})
}

// serve loads the environment, opens the profile store and blocks until ctx ends.
func serve(ctx context.Context) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	if cfg.Debug {
		setupLogging(true)
	}

	store, err := profile.New(ctx, profile.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	srv := server.NewAPIServer(store, nil, nil)
	srv.Addr = cfg.ListenAddr()

	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyAddr, srv.Addr,
		config.LogKeyBackend, store.Kind(),
		config.LogKeyVersion, config.Version)

	return srv.Start(ctx)
}
