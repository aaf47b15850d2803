package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/adapter/outbound/crypto"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage/storagetest"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type nopLogger struct{}

func (nopLogger) Error(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}

type fixedMachineID string

func (f fixedMachineID) GetMachineID() (string, error) { return string(f), nil }

func openStore(t *testing.T, path string) *DocumentStore {
	t.Helper()
	store, err := NewDocumentStore(path, crypto.NewAESCryptoService(), fixedMachineID("host"), nopLogger{})
	require.NoError(t, err)
	return store
}

func TestDocumentStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) outbound.DocumentStore {
		return openStore(t, filepath.Join(t.TempDir(), "documents.db"))
	})
}

func TestDocumentStore_PersistsEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	ctx := context.Background()

	store := openStore(t, path)
	id, err := store.Push(ctx, "offers", map[string]any{"name": "Budi", "phoneNumber": "081234567890"})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "081234567890")

	reopened := openStore(t, path)
	var name string
	found, err := reopened.Get(ctx, "offers/"+id+"/name", &name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Budi", name)
}

func TestDocumentStore_ReloadPicksUpExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	ctx := context.Background()

	first := openStore(t, path)
	second := openStore(t, path)

	require.NoError(t, first.Set(ctx, "offers/a", map[string]any{"status": "approved"}))

	var status string
	found, err := second.Get(ctx, "offers/a/status", &status)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, second.Reload(ctx))
	found, err = second.Get(ctx, "offers/a/status", &status)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "approved", status)

	// reloading an unchanged file is a no-op
	require.NoError(t, first.Reload(ctx))
}

func TestDocumentStore_TamperedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")

	store := openStore(t, path)
	require.NoError(t, store.Set(context.Background(), "offers/a", map[string]any{"name": "x"}))

	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"nonce":"","data":"AAAA","checksum":[]}`), 0600))

	_, err := NewDocumentStore(path, crypto.NewAESCryptoService(), fixedMachineID("host"), nopLogger{})
	assert.ErrorIs(t, err, model.ErrInvalidChecksum)
}

func TestDocumentStore_WriteFailureKeepsTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.db")
	ctx := context.Background()

	store := openStore(t, path)
	require.NoError(t, store.Set(ctx, "offers/a", map[string]any{"status": "pending"}))

	// a directory in place of the file makes the rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0600))

	err := store.Update(ctx, "offers/a", map[string]any{"status": "approved"})
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	var status string
	_, err = store.Get(ctx, "offers/a/status", &status)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
}
