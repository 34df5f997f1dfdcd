package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raj-Randive/soar-school-management-system/internal/bootstrap"
	"github.com/Raj-Randive/soar-school-management-system/internal/config"
)

const shutdownTimeout = 10 * time.Second

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if port != "" {
			cfg.App.Port = port
		}

		container, err := bootstrap.New(cfg)
		if err != nil {
			return err
		}
		managers, err := container.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}
		defer managers.Close()
		logger := managers.Injectable.Logger
		defer logger.Sync() //nolint:errcheck

		done := make(chan error, 1)
		go func() {
			done <- managers.App.Listen(cfg.App.Addr())
		}()
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			if err := managers.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides USER_PORT)")
}
