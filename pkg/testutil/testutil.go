// Package testutil provides shared helpers for quasar's tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger returns a zap logger that writes through t. Loader fills log at
// debug level, so passing tests stay quiet and failing ones carry the
// fill trace.
func Logger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// WriteFile writes data to name under t.TempDir and returns the path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
