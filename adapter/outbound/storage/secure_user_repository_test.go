package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bantuankita/bantuankita/adapter/outbound/crypto"
	"github.com/bantuankita/bantuankita/domain/model"
)

func createTestUserDatabase() *model.UserDatabase {
	return &model.UserDatabase{
		Users: map[string]*model.User{
			"admin": {
				ID:        "user-001",
				Username:  "admin",
				Role:      model.RoleAdmin,
				CreatedAt: time.Now().Truncate(time.Second),
				Enabled:   true,
			},
		},
	}
}

func TestSecureUserRepository_SaveAndLoad(t *testing.T) {
	logger := &mockLogger{}
	filePath := createTempFilePath(t, "users.db")

	repo, err := NewSecureUserRepository(filePath, crypto.NewAESCryptoService(), fixedMachineID{"host-a"}, logger)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if repo.Exists() {
		t.Fatal("Expected no database before first save")
	}
	if _, err := repo.Load(); !errors.Is(err, model.ErrUserDatabaseNotFound) {
		t.Fatalf("Expected ErrUserDatabaseNotFound, got %v", err)
	}

	if err := repo.Save(createTestUserDatabase()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if !repo.Exists() {
		t.Fatal("Expected database to exist after save")
	}

	info, err := os.Stat(filePath)
	if err != nil {
		t.Fatalf("Failed to stat database: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	admin, ok := loaded.Users["admin"]
	if !ok {
		t.Fatal("Expected admin user in loaded database")
	}
	if admin.ID != "user-001" || admin.Role != model.RoleAdmin || !admin.Enabled {
		t.Errorf("Unexpected admin user: %+v", admin)
	}
}

func TestSecureUserRepository_OtherMachineCannotRead(t *testing.T) {
	filePath := createTempFilePath(t, "users.db")
	aes := crypto.NewAESCryptoService()

	repo, err := NewSecureUserRepository(filePath, aes, fixedMachineID{"host-a"}, &mockLogger{})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if err := repo.Save(createTestUserDatabase()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	other, err := NewSecureUserRepository(filePath, aes, fixedMachineID{"host-b"}, &mockLogger{})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if _, err := other.Load(); err == nil {
		t.Fatal("Expected decryption with another machine key to fail")
	}
}

func TestSecureUserRepository_Corrupted(t *testing.T) {
	filePath := createTempFilePath(t, "users.db")

	repo, err := NewSecureUserRepository(filePath, crypto.NewAESCryptoService(), fixedMachineID{"host-a"}, &mockLogger{})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if err := os.WriteFile(filePath, []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := repo.Load(); !errors.Is(err, model.ErrUserDatabaseCorrupted) {
		t.Fatalf("Expected ErrUserDatabaseCorrupted, got %v", err)
	}
}
