package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/file"
	firebasestore "github.com/bantuankita/bantuankita/adapter/outbound/storage/firebase"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage/memory"
	redisstore "github.com/bantuankita/bantuankita/adapter/outbound/storage/redis"
	sqlitestore "github.com/bantuankita/bantuankita/adapter/outbound/storage/sqlite"
	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// NewDocumentStore opens the engine named in the configuration. It never
// fails: a store that cannot be opened is replaced by a disabled one.
func NewDocumentStore(
	ctx context.Context,
	cfg *config.Config,
	crypto outbound.CryptoService,
	machineID outbound.MachineIDService,
	logger outbound.Logger,
) outbound.DocumentStore {
	engine := strings.ToLower(cfg.Storage.Engine)

	store, err := openEngine(ctx, engine, cfg, crypto, machineID, logger)
	if err != nil {
		logger.Error("Document store unavailable, running degraded",
			"engine", engine,
			"error", err)
		return NewDisabledStore(err.Error())
	}

	logger.Info("Document store ready", "engine", engine)
	return store
}

func openEngine(
	ctx context.Context,
	engine string,
	cfg *config.Config,
	crypto outbound.CryptoService,
	machineID outbound.MachineIDService,
	logger outbound.Logger,
) (outbound.DocumentStore, error) {
	switch engine {
	case config.EngineMemory:
		return memory.NewDocumentStore(), nil

	case config.EngineFile:
		return file.NewDocumentStore(documentPath(cfg, "documents.db"), crypto, machineID, logger)

	case config.EngineSQLite:
		return sqlitestore.NewDocumentStore(documentPath(cfg, "documents.sqlite"))

	case config.EngineRedis:
		if cfg.Storage.Redis.URL == "" {
			return nil, fmt.Errorf("redis url not configured")
		}
		return redisstore.NewDocumentStore(cfg.Storage.Redis.URL, cfg.Storage.Redis.Prefix)

	case config.EngineFirebase:
		return firebasestore.NewDocumentStore(ctx, firebasestore.Config{
			DatabaseURL:     cfg.Storage.Firebase.DatabaseURL,
			ProjectID:       cfg.Storage.Firebase.ProjectID,
			CredentialsFile: cfg.Storage.Firebase.CredentialsFile,
		})

	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}
}

func documentPath(cfg *config.Config, fallback string) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return filepath.Join(cfg.General.DataDir, fallback)
}
