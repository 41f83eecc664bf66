package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/vibeframe/vibeframe/internal/config"
	"github.com/vibeframe/vibeframe/internal/db"
	"github.com/vibeframe/vibeframe/internal/genstream"
	"github.com/vibeframe/vibeframe/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vibeframe host",
	Long:  `Starts the HTTP host serving the session routes, the state API and the host↔sandbox websocket bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort != 0 {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "vibeframe.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		apiKey := os.Getenv(config.APIKeyEnvVar(cfg.Provider))
		var client *openai.Client
		if apiKey != "" {
			client = genstream.NewClient(apiKey, cfg.BaseURL())
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s is not set; generation is disabled.\n",
				config.APIKeyEnvVar(cfg.Provider))
		}

		srv := server.New(server.Config{
			Port:             cfg.Port,
			AllowAll:         cfg.AllowAll,
			APIKey:           apiKey,
			Model:            cfg.Model,
			MobileBreakpoint: cfg.MobileBreakpoint,
		}, database, client)

		// Graceful shutdown on interrupt.
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}
