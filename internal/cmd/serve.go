package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxynet/blog/internal/app"
	"github.com/fluxynet/blog/internal/config"
	"github.com/fluxynet/blog/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type constructor func(context.Context, config.Config) (*app.App, error)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run the GitHub login service",
	RunE:  serve(app.NewAuth),
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Run the article admin service",
	RunE:  serve(app.NewAdmin),
}

func init() {
	rootCmd.AddCommand(authCmd, adminCmd)
}

func serve(build constructor) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := build(ctx, cfg)
		if err != nil {
			return err
		}

		return run(ctx, application)
	}
}

// run serves until ctx is cancelled or the server fails, then shuts down
// within shutdownTimeout.
func run(ctx context.Context, application *app.App) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	logger.Info(application.Name()+" started", map[string]any{
		"addr": application.Addr(),
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received", nil)
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("http server failed", map[string]any{"error": runErr.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
		if runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		logger.Info(application.Name()+" stopped cleanly", nil)
	}
	return runErr
}
