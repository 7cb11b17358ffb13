package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/interntrack/internal/config"
	"github.com/jonathan/interntrack/internal/db"
	"github.com/jonathan/interntrack/internal/fetch"
	"github.com/jonathan/interntrack/internal/logging"
	"github.com/jonathan/interntrack/internal/server"
	"github.com/jonathan/interntrack/internal/server/ratelimit"
)

var (
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the InternTrack HTTP API: account signup and login, application tracking,
and resume enhancement. Runs until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from PORT or 4000)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Development mode: allow the built-in JWT secret")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	logger := logging.New(cfg.LogLevel)

	jwtConfig, err := config.NewJWTConfig(serveDev)
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if jwtConfig.Secret == config.DevJWTSecret {
		logger.Warn("using the development JWT secret; set JWT_SECRET before deploying")
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, closeBackend, err := buildEnhancer(ctx, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database ready", "driver", cfg.DatabaseDriver)

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Store:       store,
		Logger:      logger,
		JWT:         jwtConfig,
		Password:    passwordConfig,
		Enhancer:    e,
		Fetcher:     fetch.NewCachedFetcher(nil),
		RateLimit:   ratelimit.LoadConfig(),
		CORSOrigin:  cfg.CORSOrigin,
		MaxUploadMB: cfg.MaxUploadMB,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
