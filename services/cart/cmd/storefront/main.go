package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/Storefront/pkg/logger"
	"github.com/utafrali/Storefront/services/cart/internal/app"
	"github.com/utafrali/Storefront/services/cart/internal/cli"
	"github.com/utafrali/Storefront/services/cart/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCommandError
	}

	// Logs go to stderr so command output stays clean.
	log := logger.NewText("storefront-cli", cfg.LogLevel, os.Stderr)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCommandError
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := application.Close(closeCtx); err != nil {
			log.Error("cart may not have been saved", slog.String("error", err.Error()))
		}
	}()

	err = cli.NewRootCommand(application.Deps()).ExecuteContext(ctx)
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return cli.ExitCommandError
		}
	}
	return cli.GetExitCode(err)
}
