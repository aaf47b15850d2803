package machineid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const appID = "bantuankita"

type hardwareMachineID struct {
	fallbackPath string
	once         sync.Once
	id           string
	err          error
}

// NewHardwareMachineID derives the id from the OS machine id. Hosts without
// one (most containers) get a random id persisted at fallbackPath instead.
func NewHardwareMachineID(fallbackPath string) outbound.MachineIDService {
	return &hardwareMachineID{fallbackPath: fallbackPath}
}

func (h *hardwareMachineID) GetMachineID() (string, error) {
	h.once.Do(func() {
		h.id, h.err = h.resolve()
	})
	return h.id, h.err
}

func (h *hardwareMachineID) resolve() (string, error) {
	// app-specific HMAC of the raw id
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id, nil
	}
	if h.fallbackPath == "" {
		return "", err
	}

	data, readErr := os.ReadFile(h.fallbackPath)
	if readErr == nil {
		if stored := strings.TrimSpace(string(data)); stored != "" {
			return stored, nil
		}
	} else if !errors.Is(readErr, os.ErrNotExist) {
		return "", fmt.Errorf("read machine id file: %w", readErr)
	}

	generated := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(h.fallbackPath), 0755); err != nil {
		return "", fmt.Errorf("create machine id dir: %w", err)
	}
	if err := os.WriteFile(h.fallbackPath, []byte(generated+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write machine id file: %w", err)
	}
	return generated, nil
}
