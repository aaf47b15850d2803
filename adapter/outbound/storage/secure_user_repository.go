package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/sealed"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type secureUserRepository struct {
	filePath string
	box      *sealed.Box
	logger   outbound.Logger
}

// NewSecureUserRepository stores panel users in a sealed file next to the data directory
func NewSecureUserRepository(
	filePath string,
	crypto outbound.CryptoService,
	machineID outbound.MachineIDService,
	logger outbound.Logger,
) (outbound.UserRepository, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create user database directory: %w", err)
	}

	box, err := sealed.NewBox(crypto, machineID)
	if err != nil {
		return nil, err
	}

	return &secureUserRepository{
		filePath: filePath,
		box:      box,
		logger:   logger,
	}, nil
}

func (r *secureUserRepository) Save(db *model.UserDatabase) error {
	data, err := r.box.Seal(db)
	if err != nil {
		return err
	}

	if err := sealed.WriteFile(r.filePath, data); err != nil {
		return err
	}

	r.logger.Debug("User database saved", "path", r.filePath, "user_count", len(db.Users))
	return nil
}

func (r *secureUserRepository) Load() (*model.UserDatabase, error) {
	raw, err := os.ReadFile(r.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, model.ErrUserDatabaseNotFound
	}
	if err != nil {
		return nil, err
	}

	var db model.UserDatabase
	if err := r.box.Open(raw, &db); err != nil {
		if errors.Is(err, sealed.ErrCorrupted) {
			return nil, model.ErrUserDatabaseCorrupted
		}
		return nil, err
	}

	if db.Users == nil {
		db.Users = make(map[string]*model.User)
	}

	r.logger.Info("User database loaded", "user_count", len(db.Users))
	return &db, nil
}

func (r *secureUserRepository) Exists() bool {
	_, err := os.Stat(r.filePath)
	return !os.IsNotExist(err)
}
