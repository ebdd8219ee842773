package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ijo-project/ijo-backend/internal/api"
	"github.com/ijo-project/ijo-backend/internal/config"
	"github.com/ijo-project/ijo-backend/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "ijo-server",
		Short:        "IJO waste-sorting economy backend",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading IJO_* variables")

	rootCmd.AddCommand(newServeCmd(&envFile))
	rootCmd.AddCommand(newCreateAdminCmd(&envFile))
	return rootCmd
}

// setup loads configuration and wires the application
func setup(ctx context.Context, envFile string) (*config.Config, *factory.App, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	factoryCfg, err := factory.ConfigFrom(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create application: %w", err)
	}
	return cfg, app, logger, nil
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, app, logger, err := setup(ctx, *envFile)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("closing storage", slog.String("error", err.Error()))
				}
			}()

			router := api.NewRouter(api.RouterConfig{
				Logger:           logger,
				AuthService:      app.AuthService,
				UsersService:     app.UsersService,
				ScanService:      app.ScanService,
				GamesService:     app.GamesService,
				CompanionService: app.CompanionService,
				ContentService:   app.ContentService,
				AllowedOrigins:   cfg.CORS.AllowedOrigins,
				LoginRate:        cfg.Auth.LoginRate,
				LoginBurst:       cfg.Auth.LoginBurst,
			})

			server := api.NewServer(router, api.ServerConfig{
				Host:            cfg.HTTP.Host,
				Port:            cfg.HTTP.Port,
				ReadTimeout:     cfg.HTTP.ReadTimeout,
				WriteTimeout:    cfg.HTTP.WriteTimeout,
				ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			}, logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			logger.Info("server started",
				slog.String("addr", server.Addr()),
				slog.String("storage", cfg.Storage.Type),
			)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			}

			// The signal context is already cancelled, so shut down on a fresh one
			if err := server.Shutdown(context.Background()); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}

func newCreateAdminCmd(envFile *string) *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an active admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, app, logger, err := setup(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			admin, err := app.AuthService.CreateAdmin(cmd.Context(), email, password, fullName)
			if err != nil {
				return err
			}
			logger.Info("admin ready", slog.String("account_id", string(admin.ID)))
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.Flags().StringVar(&fullName, "name", "Admin", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
