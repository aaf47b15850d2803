// Package sealed reads and writes JSON payloads encrypted with a key bound to the host.
package sealed

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const envelopeVersion = 1

// ErrCorrupted is returned when the envelope or its payload cannot be decoded
var ErrCorrupted = errors.New("sealed file corrupted")

// Envelope is the on-disk structure of a sealed file
type Envelope struct {
	Version  uint32   `json:"version"`
	Nonce    []byte   `json:"nonce"`
	Data     []byte   `json:"data"`
	Checksum [32]byte `json:"checksum"`
}

// Box seals values with a key derived from the machine id
type Box struct {
	crypto outbound.CryptoService
	key    [32]byte
}

func NewBox(crypto outbound.CryptoService, machineID outbound.MachineIDService) (*Box, error) {
	id, err := machineID.GetMachineID()
	if err != nil {
		return nil, fmt.Errorf("machine id: %w", err)
	}
	return &Box{crypto: crypto, key: crypto.DeriveKey(id)}, nil
}

// Seal encodes v as JSON, encrypts it and wraps it in a checksummed envelope
func (b *Box) Seal(v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	encrypted, nonce, err := b.crypto.Encrypt(plain, b.key)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Version:  envelopeVersion,
		Nonce:    nonce,
		Data:     encrypted,
		Checksum: sha256.Sum256(encrypted),
	})
}

// Open verifies and decrypts raw into v
func (b *Box) Open(raw []byte, v any) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ErrCorrupted
	}

	if sha256.Sum256(env.Data) != env.Checksum {
		return model.ErrInvalidChecksum
	}

	plain, err := b.crypto.Decrypt(env.Data, env.Nonce, b.key)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	if err := json.Unmarshal(plain, v); err != nil {
		return ErrCorrupted
	}
	return nil
}

// WriteFile replaces path through a temp file and rename so readers never see a partial file
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
