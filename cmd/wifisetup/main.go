package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/raterudder/wifisetup/pkg/controller"
	"github.com/raterudder/wifisetup/pkg/device"
	"github.com/raterudder/wifisetup/pkg/log"
	"github.com/raterudder/wifisetup/pkg/server"
	"github.com/raterudder/wifisetup/pkg/types"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
	"gopkg.in/yaml.v3"
)

func main() {
	// init packages
	d := device.Configured()
	c := controller.Configured(d)
	srv := server.Configured(c)

	once := lflag.Bool("once", false, "Run the startup reads, print the resulting state and exit")
	output := lflag.String("output", "yaml", "Format of the state printed by -once (json or yaml)")

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}
	log.SetDefaultLogLevel(level)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = log.With(ctx, logger.With(slog.String("device", d.BaseURL())))

	c.Start(ctx)
	defer c.Stop()

	if *once {
		c.Wait()
		if err := printView(os.Stdout, *output, c.View()); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to print state", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if !srv.Enabled() {
		log.Ctx(ctx).ErrorContext(ctx, "http-listen is empty and -once is not set, nothing to do")
		os.Exit(1)
	}

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}

func printView(w io.Writer, format string, v types.View) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
