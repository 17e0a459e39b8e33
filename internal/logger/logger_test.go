package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewReadsLevelFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	if got := New().GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestNewEnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "warn")

	if got := New().GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "bogus")

	if got := New().GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", got)
	}
}
