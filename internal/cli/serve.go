package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/pixelmags/internal/database"
	"github.com/deppfellow/pixelmags/internal/handler"
	"github.com/deppfellow/pixelmags/internal/router"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func ServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the search sync worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipMigrate && rt.cfg.Primary.Env != "local" {
				if err := database.Migrate(ctx, rt.logger, rt.cfg); err != nil {
					return err
				}
			}

			srv, services, err := rt.openServices()
			if err != nil {
				return err
			}

			if srv.Config.Search.Path == "" {
				if _, err := services.Reindex(ctx); err != nil {
					_ = srv.Close()
					return err
				}
				rt.logger.Info().Msg("in-memory search indexes rebuilt from the entity store")
			}

			if err := srv.StartJobs(); err != nil {
				_ = srv.Close()
				return err
			}

			r := router.NewRouter(srv, handler.NewHandlers(srv, services), services)
			srv.SetupHTTPServer(r)

			serveErr := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			var runErr error
			select {
			case runErr = <-serveErr:
				if runErr != nil {
					rt.logger.Error().Err(runErr).Msg("server stopped")
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}

			rt.logger.Info().Msg("server exited properly")
			return runErr
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply database migrations on startup")

	return cmd
}
