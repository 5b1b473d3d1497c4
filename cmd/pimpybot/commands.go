package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SijmenSchoon/pimpybot/internal/banner"
	"github.com/SijmenSchoon/pimpybot/internal/bot"
	"github.com/SijmenSchoon/pimpybot/internal/config"
	"github.com/SijmenSchoon/pimpybot/internal/history"
	"github.com/SijmenSchoon/pimpybot/internal/logging"
	"github.com/SijmenSchoon/pimpybot/internal/store"
	"github.com/SijmenSchoon/pimpybot/internal/telegram"
	"github.com/SijmenSchoon/pimpybot/internal/via"
)

func newStartCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the pimpybot daemon",
		Long: `Start the bot: poll Telegram for commands and button presses and serve
them against the via task API until interrupted. The credential store is
flushed on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := logging.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}

			credStore, err := store.Load(cfg.Store.Path, cfg.StoreDefaults())
			if err != nil {
				return fmt.Errorf("failed to load credential store: %w", err)
			}

			var recorder bot.Recorder
			if cfg.History != nil && cfg.History.Enabled {
				historyStore, err := history.NewStore(cfg.History.Path)
				if err != nil {
					return fmt.Errorf("failed to open history store: %w", err)
				}
				defer func() { _ = historyStore.Close() }()
				recorder = historyStore
			}

			gateway := via.NewClient(cfg.Via.BaseURL)
			client := telegram.NewClient(cfg.Telegram.BotToken)

			router, err := bot.NewRouter(client, gateway, credStore, recorder)
			if err != nil {
				return fmt.Errorf("failed to build router: %w", err)
			}
			transport := telegram.NewTransport(client, router)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			users, groups := credStore.Counts()
			banner.Startup(version, users, groups)

			transport.Start(ctx)

			flusher := store.NewScheduler(credStore, cfg.Store.Path, cfg.Store.Flush)
			if err := flusher.Start(); err != nil {
				return fmt.Errorf("failed to start flush scheduler: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			logging.Info("Shutting down")
			cancel()
			transport.Stop()
			flusher.Stop()

			if err := credStore.Flush(cfg.Store.Path); err != nil {
				logging.Error("Failed to flush credential store", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.pimpybot/config.yaml)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			fmt.Printf("✓ %s is valid\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.pimpybot/config.yaml)")
	return cmd
}
