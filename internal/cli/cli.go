// Package cli implements the pixelmags command line: the API server, schema
// migrations and index maintenance.
package cli

import (
	"fmt"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/logger"
	"github.com/deppfellow/pixelmags/internal/repository"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootCmd returns the pixelmags command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pixelmags",
		Short: "pixelmags catalog backend",
		Long: `pixelmags serves the magazine catalog REST API and keeps the full-text
search indexes in sync with the entity store.

Configuration is read from PIXELMAGS_* environment variables and .env.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(ReindexCmd())
	rootCmd.AddCommand(SearchCmd())

	return rootCmd
}

// app is the shared state of a command run.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *logger.LoggerService
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{
		cfg:           cfg,
		logger:        &log,
		loggerService: loggerService,
	}, nil
}

func (rt *app) close() {
	rt.loggerService.Shutdown()
}

// openServices opens the store and the indexes and builds the services on
// top of them. The caller owns the returned server and must Close it.
func (rt *app) openServices() (*server.Server, *service.Services, error) {
	srv, err := server.New(rt.cfg, rt.logger, rt.loggerService)
	if err != nil {
		return nil, nil, err
	}

	services, err := service.NewServices(srv, repository.NewRepositories(srv))
	if err != nil {
		_ = srv.Close()
		return nil, nil, fmt.Errorf("could not create services: %w", err)
	}

	return srv, services, nil
}
