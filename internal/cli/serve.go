package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zereraz/igne-sub002/internal/audit"
	"github.com/zereraz/igne-sub002/internal/config"
	"github.com/zereraz/igne-sub002/internal/logger"
	"github.com/zereraz/igne-sub002/internal/metrics"
	"github.com/zereraz/igne-sub002/pkg/dispatcher"
	"github.com/zereraz/igne-sub002/pkg/gateway"
	"github.com/zereraz/igne-sub002/pkg/planner"
	"github.com/zereraz/igne-sub002/pkg/toolcatalog"
	"github.com/zereraz/igne-sub002/pkg/vault"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the plan executor service",
	Long: `Run the plan executor against a vault. Plans are received, approved
and executed through the in-process engine API; lifecycle events stream to
UI clients over the websocket gateway.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	lg, err := logger.New(logger.Config{
		Level:   level,
		File:    cfg.Logging.File,
		Console: true,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lg.Close()

	vaultPath := cfg.Vault.Path
	if vaultPath == "" {
		vaultPath, err = vault.EnsureDefault()
		if err != nil {
			return fmt.Errorf("failed to ensure default vault: %w", err)
		}
	} else if err := vault.Ensure(vaultPath); err != nil {
		return fmt.Errorf("failed to ensure vault: %w", err)
	}

	vaultDispatcher, err := dispatcher.NewVaultDispatcher(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditLog, err = audit.New(cfg.Audit.File)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer auditLog.Close()
	}

	m := metrics.New()

	engine, err := planner.NewEngine(planner.Config{
		Catalog:    toolcatalog.NewVaultCatalog(),
		Dispatcher: vaultDispatcher,
		Reader:     vaultDispatcher,
		Metrics:    m,
		Audit:      auditLog,
	})
	if err != nil {
		return fmt.Errorf("failed to create plan engine: %w", err)
	}

	if cfg.Vault.Watch {
		watcher, err := vault.NewWatcher(vault.WatcherConfig{
			Root: vaultPath,
			OnChange: func(change vault.Change) {
				log.Debug().
					Str("path", change.Path).
					Str("type", string(change.Type)).
					Msg("Vault changed")
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create vault watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start vault watcher: %w", err)
		}
		defer watcher.Stop()
	}

	var gw *gateway.Server
	if cfg.Gateway.Enabled {
		gw, err = gateway.NewServer(gateway.Config{
			Port:           cfg.Gateway.Port,
			Engine:         engine,
			MetricsHandler: m.Handler(),
			Logger:         lg.GetZerolog().With().Str("component", "gateway").Logger(),
		})
		if err != nil {
			return fmt.Errorf("failed to create gateway: %w", err)
		}
		if err := gw.Start(); err != nil {
			return fmt.Errorf("failed to start gateway: %w", err)
		}
	}

	log.Info().
		Str("vault", vaultPath).
		Bool("gateway", cfg.Gateway.Enabled).
		Msg("Plan executor running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	if gw != nil {
		if err := gw.Stop(); err != nil {
			log.Error().Err(err).Msg("Gateway shutdown error")
		}
	}

	return nil
}
