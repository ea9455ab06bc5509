package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ophttp "github.com/uclouvain/admission-core/internal/interface/http"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the event handlers, the scheduled jobs and the ops HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("starting admission service",
				"env", cfg.App.Environment,
				"storage", cfg.Database.Driver,
				"event_bus", cfg.EventBus.Mode,
				"redis", cfg.Redis.Enabled,
			)
			rt, err := build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				log.Info("releasing resources")
				rt.close()
			}()
			log.Info("application ready", "commands", len(rt.app.Bus.Registered()))

			g, gctx := errgroup.WithContext(ctx)
			if cfg.HTTP.Enabled {
				server := ophttp.NewServer(ophttp.Config{
					Host:            cfg.HTTP.Host,
					Port:            cfg.HTTP.Port,
					ReadTimeout:     cfg.HTTP.ReadTimeout,
					WriteTimeout:    cfg.HTTP.WriteTimeout,
					IdleTimeout:     60 * time.Second,
					ShutdownTimeout: cfg.App.ShutdownTimeout,
				}, ophttp.Dependencies{
					Health:   rt.health,
					Gatherer: rt.registry,
					Commands: rt.app.Bus.Registered,
					Logger:   log,
				})
				g.Go(func() error { return server.Run(gctx) })
			}
			if rt.jobs != nil {
				g.Go(func() error { return rt.jobs.Run(gctx) })
			}
			g.Go(func() error {
				<-gctx.Done()
				if ctx.Err() != nil {
					log.Info("shutdown signal received")
				}
				return nil
			})

			if err := g.Wait(); err != nil && err != context.Canceled {
				return err
			}
			log.Info("shutdown completed")
			return nil
		},
	}
	return cmd
}
