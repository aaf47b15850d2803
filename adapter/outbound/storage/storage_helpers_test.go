package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// Mock logger for testing
type mockLogger struct {
	logs []string
}

func (m *mockLogger) Debug(msg string, args ...any) {
	m.logs = append(m.logs, msg)
}

func (m *mockLogger) Info(msg string, args ...any) {
	m.logs = append(m.logs, msg)
}

func (m *mockLogger) Warn(msg string, args ...any) {
	m.logs = append(m.logs, msg)
}

func (m *mockLogger) Error(msg string, args ...any) {
	m.logs = append(m.logs, msg)
}

type fixedMachineID struct {
	id string
}

func (f fixedMachineID) GetMachineID() (string, error) {
	return f.id, nil
}

// Test helper to create a temporary file path
func createTempFilePath(t *testing.T, name string) string {
	tempDir, err := os.MkdirTemp("", "bantuankita-test-")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	// Clean up temp directory after test
	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return filepath.Join(tempDir, name)
}
