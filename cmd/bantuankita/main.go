package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/bantuankita/bantuankita/adapter/inbound/rest"
	"github.com/bantuankita/bantuankita/adapter/inbound/websocket"
	"github.com/bantuankita/bantuankita/adapter/outbound/crypto"
	"github.com/bantuankita/bantuankita/adapter/outbound/filewatcher"
	"github.com/bantuankita/bantuankita/adapter/outbound/logging"
	"github.com/bantuankita/bantuankita/adapter/outbound/machineid"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage/repository"
	"github.com/bantuankita/bantuankita/adapter/outbound/telegram"
	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
	"github.com/bantuankita/bantuankita/domain/service"
)

const version = "1.0.0"

func main() {
	var (
		configPath     string
		generateConfig bool
		showVersion    bool
		seed           bool
		setWebhook     bool
	)

	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.BoolVar(&generateConfig, "generate-config", false, "Generate default configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&seed, "seed", false, "Store sample approved offers and exit")
	flag.BoolVar(&setWebhook, "set-webhook", false, "Register telegram.webhookUrl with the Bot API and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("Bantuan-Kita Version %s\n", version)
		os.Exit(0)
	}

	if generateConfig {
		if err := config.SaveConfig(config.DefaultConfig(), configPath); err != nil {
			fmt.Printf("Error generating config file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration file generated at: %s\n", configPath)
		os.Exit(0)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.General.DataDir, 0755); err != nil {
		fmt.Printf("Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewSlogAdapter(cfg)
	defer logger.Shutdown()

	logger.Info("Starting Bantuan-Kita",
		"version", version,
		"dataDir", cfg.General.DataDir,
		"engine", cfg.Storage.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cryptoService := crypto.NewAESCryptoService()
	machineID := machineid.NewHardwareMachineID(filepath.Join(cfg.General.DataDir, "machine.id"))

	store := storage.NewDocumentStore(ctx, cfg, cryptoService, machineID, logger)
	defer store.Close()

	offerRepo := repository.NewOfferRepository(store)
	removalRepo := repository.NewRemovalRequestRepository(store, offerRepo)

	notifier, err := telegram.NewNotifier(telegram.Config{
		Token:       cfg.Telegram.BotToken,
		AdminChatID: cfg.Telegram.AdminChatID,
		Endpoint:    cfg.Telegram.APIEndpoint,
		Timeout:     cfg.Telegram.Timeout,
	}, logger)
	if err != nil {
		logger.Error("Telegram unavailable, notifications disabled", "error", err)
		notifier = telegram.NewDisabledNotifier(logger)
	}

	if setWebhook {
		if err := registerWebhook(ctx, notifier, cfg.Telegram.WebhookURL); err != nil {
			logger.Error("Failed to set webhook", "error", err)
			logger.Shutdown()
			os.Exit(1)
		}
		return
	}

	wsHandler := websocket.NewHandler(ctx, logger)
	statsService := service.NewStatsService(ctx, offerRepo, removalRepo, store, logger, cfg.Stats.Interval)
	events := service.FanOut(wsHandler, service.StatsRecorder{Stats: statsService})

	offerService := service.NewOfferService(offerRepo, notifier, events, logger)
	removalService := service.NewRemovalService(removalRepo, notifier, events, logger)
	callbackService := service.NewCallbackService(offerService, removalService, notifier, logger)

	if seed {
		n, err := offerService.Seed(ctx)
		if err != nil {
			logger.Error("Seeding failed", "created", n, "error", err)
			logger.Shutdown()
			os.Exit(1)
		}
		return
	}

	if n, err := removalService.Reconcile(ctx); err != nil {
		logger.Warn("Startup reconciliation failed", "error", err)
	} else if n > 0 {
		logger.Info("Reconciled approved removal requests", "count", n)
	}

	userRepo, err := storage.NewSecureUserRepository(
		filepath.Join(cfg.General.DataDir, "users.db"), cryptoService, machineID, logger)
	if err != nil {
		logger.Error("Failed to open user database", "error", err)
		logger.Shutdown()
		os.Exit(1)
	}
	authService := service.NewAuthService(userRepo, cryptoService, logger,
		cfg.HTTP.JWT.Secret, cfg.HTTP.JWT.ExpirationMinutes, cfg.Security.AdminUsername)

	if cfg.Security.EnableAuthentication && cfg.HTTP.JWT.Secret == config.DefaultConfig().HTTP.JWT.Secret {
		logger.Warn("Using the default JWT secret, set BANTUAN_JWT_SECRET in production")
	}

	watcher := startFileWatchers(ctx, cfg, configPath, store, logger)
	if watcher != nil {
		defer watcher.Cleanup()
	}

	router := mux.NewRouter()
	router.Use(rest.RequestLogger(logger))

	restHandler := rest.NewHandler(
		offerService,
		removalService,
		callbackService,
		statsService,
		notifier,
		store,
		cfg,
		logger,
	)
	restHandler.SetLevelController(logger)
	restHandler.SetLiveFeed(http.HandlerFunc(wsHandler.HandleConnection))
	restHandler.SetConfigPath(configPath)
	restHandler.SetupRoutes(router,
		rest.NewAuthHandler(authService, logger),
		rest.NewAuthMiddleware(authService, logger, cfg),
	)

	if cfg.General.Development {
		router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
			pathTemplate, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, err := route.GetMethods()
			if err != nil {
				methods = []string{"ANY"}
			}
			logger.Debug("Route", "path", pathTemplate, "methods", strings.Join(methods, ","))
			return nil
		})
	}

	if err := config.EnsureTLSCertificates(cfg, cryptoService, logger); err != nil {
		logger.Error("TLS setup failed", "error", err)
		logger.Shutdown()
		os.Exit(1)
	}

	httpAddr := fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           rest.CORS(cfg)(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", httpAddr, "tls", cfg.HTTP.TLS)
		var err error
		if cfg.HTTP.TLS {
			err = server.ListenAndServeTLS(cfg.HTTP.CertFile, cfg.HTTP.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("HTTP server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	wsHandler.Cleanup()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	cancel()
	statsService.Cleanup()

	logger.Info("Server shutdown complete")
}

// loadConfig falls back to defaults plus environment when no file exists,
// which is how container deployments run.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.DefaultConfig()
		if err := config.LoadDotEnv(".env"); err != nil {
			return nil, err
		}
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.LoadConfig(path)
}

// registerWebhook points the bot at url. An empty url would silently remove
// the live webhook, so it is refused.
func registerWebhook(ctx context.Context, notifier outbound.ChatNotifier, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("telegram.webhookUrl is not set")
	}
	return notifier.SetWebhook(ctx, url)
}

// startFileWatchers follows the config file for log level changes and, for
// the file engine, the document file for edits made by other processes.
func startFileWatchers(
	ctx context.Context,
	cfg *config.Config,
	configPath string,
	store any,
	logger *logging.SlogAdapter,
) interface{ Cleanup() } {
	reloadable, isFileStore := store.(interface {
		Reload(ctx context.Context) error
	})
	_, statErr := os.Stat(configPath)
	watchStore := isFileStore && cfg.Storage.WatchFile && strings.EqualFold(cfg.Storage.Engine, config.EngineFile)

	if statErr != nil && !watchStore {
		return nil
	}

	fsWatcher, err := filewatcher.NewFSWatcher(filewatcher.DefaultDebounce)
	if err != nil {
		logger.Warn("File watching unavailable", "error", err)
		return nil
	}

	watchService := service.NewFileWatcherService(fsWatcher, logger)
	if err := watchService.Start(ctx); err != nil {
		logger.Warn("File watcher failed to start", "error", err)
		return nil
	}

	if statErr == nil {
		err := watchService.Watch(ctx, configPath, func(ctx context.Context) error {
			updated, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if strings.EqualFold(updated.General.LogLevel, logger.Level()) {
				return nil
			}
			return logger.UpdateLevel(updated.General.LogLevel)
		})
		if err != nil {
			logger.Warn("Cannot watch config file", "path", configPath, "error", err)
		}
	}

	if watchStore {
		docPath := cfg.Storage.Path
		if docPath == "" {
			docPath = filepath.Join(cfg.General.DataDir, "documents.db")
		}
		if err := watchService.Watch(ctx, docPath, reloadable.Reload); err != nil {
			logger.Warn("Cannot watch document file", "path", docPath, "error", err)
		}
	}

	return watchService
}
