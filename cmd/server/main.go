package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trouwen/internal/platform/config"
	"trouwen/internal/platform/httpserver"
	"trouwen/internal/platform/logger"
	"trouwen/internal/platform/postgres"
)

const shutdownTimeout = 10 * time.Second

// main wires the CLI. Business logic lives in the internal service packages.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trouwen",
		Short:         "Marriage registration data service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TROUWEN_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.DevMode {
		res, token, err := a.seed(ctx)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		log.InfoContext(ctx, "development application ready",
			"client_id", res.Application.ClientID,
			"token", token,
		)
	}

	srv := httpserver.New(cfg.Addr, a.handler)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(ctx, "starting trouwen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.audit.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.InfoContext(shutdownCtx, "shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			db, err := postgres.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			logger.New(cfg.LogLevel).InfoContext(cmd.Context(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo organization, contact person and application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set; seeding memory stores has no lasting effect")
			}
			a, err := buildApp(cmd.Context(), cfg, logger.New(cfg.LogLevel))
			if err != nil {
				return err
			}
			defer a.Close()

			res, token, err := a.seed(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "organisatie: %s (%s)\n", res.Organization.Name, res.Organization.ID)
			fmt.Fprintf(out, "persoon:     %s (%s)\n", res.Person, res.Person.ID)
			fmt.Fprintf(out, "client_id:   %s\n", res.Application.ClientID)
			fmt.Fprintf(out, "token:       %s\n", token)
			return nil
		},
	}
}
