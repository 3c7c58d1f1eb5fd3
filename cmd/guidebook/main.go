// Основной пакет редактора интерактивных руководств. Запускает HTTP API редактора,
// проверяет интерактивную разметку документов и форматирует их.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
)

var version string = "DEV"

// initLogging настраивает slog до выполнения команды
func initLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelInfo
	if cmd.Bool("trace") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.Debug("Program started", "args", os.Args, "version", version, "runtime", runtime.Version())
	return ctx, nil
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:            "guidebook",
		Usage:           "interactive guide editor: API server, markup checker and formatter",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initLogging,
		OnUsageError:    usageErrorHandler,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "trace", Usage: "verbose logs"},
		},
		Commands: []*cli.Command{
			{
				Name:         "serve",
				Usage:        "Starts editor HTTP API",
				OnUsageError: usageErrorHandler,
				Action:       runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Usage: "API listen `ADDR` (overrides LISTEN_ADDR)"},
					&cli.StringFlag{Name: "metrics", Usage: "metrics listen `ADDR` (overrides METRICS_ADDR)"},
					&cli.StringFlag{Name: "preview", Usage: "preview `FORMAT`: pretty, minify or raw (overrides PREVIEW_FORMAT)"},
					&cli.BoolFlag{Name: "sanitize", Usage: "sanitize preview HTML (overrides PREVIEW_SANITIZE)"},
					&cli.IntFlag{Name: "max-sessions", Usage: "limit of open sessions, 0 for unlimited (overrides MAX_SESSIONS)"},
				},
			},
			{
				Name:         "check",
				Usage:        "Lists interactive nodes of a document and validates their attributes",
				OnUsageError: usageErrorHandler,
				Action:       runCheck,
				ArgsUsage:    "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print report as JSON"},
				},
			},
			{
				Name:         "format",
				Usage:        "Normalizes a document and prints it",
				OnUsageError: usageErrorHandler,
				Action:       runFormat,
				ArgsUsage:    "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Value: "pretty", Usage: "output `FORMAT`: pretty, minify or raw"},
					&cli.BoolFlag{Name: "json", Usage: "print TipTap JSON instead of HTML"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write result to `FILE` instead of STDOUT"},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
