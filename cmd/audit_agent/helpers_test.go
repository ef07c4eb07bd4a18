package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const binaryBuildCmd = "go build -o bin/audit_agent ./cmd/audit_agent"

// getBinaryPath locates the built CLI for end-to-end command tests, skipping
// the test in short mode or when the binary has not been built.
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	path := filepath.Join("..", "..", "bin", "audit_agent")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Skipf("%s not built; run '%s' from the repository root", path, binaryBuildCmd)
	}
	return path
}
