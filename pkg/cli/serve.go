package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagrelease/pkg/cli/config"
	controller "github.com/m-mizutani/tagrelease/pkg/controller/http"
	"github.com/m-mizutani/tagrelease/pkg/usecase"
	"github.com/m-mizutani/tagrelease/pkg/utils/async"
	"github.com/m-mizutani/tagrelease/pkg/workflow"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		slackCfg     config.Slack
		releaseCfg   config.Release
		sentryCfg    config.Sentry
		firestoreCfg config.Firestore
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving Slack events and interactions",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			settings, err := releaseCfg.Load()
			if err != nil {
				return err
			}

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			repo, closeRepo, err := firestoreCfg.NewRepository(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create workflow repository")
			}
			defer closeRepo()

			logger.Info("Starting tagrelease server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("slack", slackCfg),
				slog.Any("repository", settings.Repository),
				slog.Any("default_platforms", settings.DefaultPlatforms),
				slog.Bool("firestore", firestoreCfg.ProjectID != ""),
			)

			// Create use cases
			store := workflow.NewStore(repo)
			releaseUC := usecase.NewRelease(store, settings.Repository,
				usecase.WithDefaultPlatforms(settings.DefaultPlatforms),
			)
			runner := async.NewRunner()

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				releaseUC,
				slackCfg.NewClient(),
				runner,
				controller.WithAddr(serverCfg.Addr),
				controller.WithSigningSecret(slackCfg.SigningSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			if err := runner.Wait(shutdownCtx); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
