package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/tictacgame-go/internal/api"
	"github.com/mcoot/tictacgame-go/internal/config"
	"github.com/mcoot/tictacgame-go/internal/factory"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tictacgame-server <config path>",
		Short: "Turn-based two-player marking game server",
		Long: `tictacgame-server hosts two-player 3x3 marking matches over a
line-oriented TCP protocol, with named rooms, spectators and account
authentication.

The config file is JSON with a required "port" (1024-65535) and
"userDatabase" (credential store path), plus optional "storage",
"redisURL" and "statusPort" keys.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration and the credential store are validated before binding
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	app, err := factory.New(cfg, logger)
	if err != nil {
		return err
	}

	if err := app.Credentials.Load(cmd.Context()); err != nil {
		return err
	}

	if err := app.Server.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional HTTP status surface
	if cfg.StatusPort != 0 {
		statusCfg := api.DefaultServerConfig()
		statusCfg.Port = cfg.StatusPort
		status := api.NewServer(api.NewRouter(api.RouterConfig{
			Logger: logger,
			Rooms:  app.Rooms,
		}), statusCfg, logger)

		go func() {
			if err := status.Start(); err != nil {
				logger.Error("status API failed", slog.String("error", err.Error()))
			}
		}()
		defer func() {
			if err := status.Shutdown(context.Background()); err != nil {
				logger.Error("status API shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	if err := app.Server.Serve(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
