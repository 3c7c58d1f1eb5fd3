package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/config"
)

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.ReadConfig()
	if err != nil {
		return err
	}
	if cmd.IsSet("listen") {
		cfg.ListenAddr = cmd.String("listen")
	}
	if cmd.IsSet("metrics") {
		cfg.MetricsAddr = cmd.String("metrics")
	}
	if cmd.IsSet("preview") {
		cfg.PreviewFormat = cmd.String("preview")
	}
	if cmd.IsSet("sanitize") {
		cfg.PreviewSanitize = cmd.Bool("sanitize")
	}
	if cmd.IsSet("max-sessions") {
		cfg.MaxSessions = int(cmd.Int("max-sessions"))
	}

	srv, err := guidebook.NewServer(cfg)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
