package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TS01: Paths and Config
// ============================================================================

func TestDefaultLogPath_UnderCrmdexDir(t *testing.T) {
	path := DefaultLogPath()

	assert.True(t, strings.Contains(path, ".crmdex"), "log path should live under .crmdex, got %s", path)
	assert.Equal(t, "crmdex.log", filepath.Base(path))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
}

func TestDebugConfig_LowersLevelOnly(t *testing.T) {
	cfg := DebugConfig()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultConfig().MaxSizeMB, cfg.MaxSizeMB)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, parseLevel(tc.input), "parseLevel(%q)", tc.input)
	}
}

// ============================================================================
// TS02: Setup
// ============================================================================

func TestSetup_WritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, cleanup, err := Setup(Config{
		Level:     "debug",
		FilePath:  logPath,
		MaxSizeMB: 1,
		MaxFiles:  3,
	})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("reindex started", slog.String("job", "j1"))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"reindex started"`)
	assert.Contains(t, string(content), `"job":"j1"`)
}

// ============================================================================
// TS03: Rotation
// ============================================================================

func TestRotatingWriter_WritesAreImmediatelyVisible(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	line := []byte(`{"level":"INFO","msg":"test"}` + "\n")
	n, err := w.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	// Synced on every write, so readable before Close
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, string(line), string(content))
}

func TestRotatingWriter_RotatesAtSizeLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")

	// 0 MB threshold forces rotation on every write
	w, err := NewRotatingWriter(logPath, 0, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	payload := strings.Repeat("x", 2048)
	_, err = w.Write([]byte(payload))
	require.NoError(t, err)
	_, err = w.Write([]byte(payload))
	require.NoError(t, err)

	assert.FileExists(t, logPath)
	assert.FileExists(t, logPath+".1")
}

func TestRotatingWriter_DropsFilesPastMaxFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "maxfiles.log")

	w, err := NewRotatingWriter(logPath, 0, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	payload := strings.Repeat("y", 1024)
	for i := 0; i < 5; i++ {
		_, _ = w.Write([]byte(payload))
	}

	assert.NoFileExists(t, logPath+".3", "rotations beyond maxFiles should be removed")
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")

	w, err := NewRotatingWriter(logPath, 10, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = w.Write([]byte(fmt.Sprintf(`{"writer":%d,"iter":%d}`, id, j) + "\n"))
			}
		}(i)
	}
	wg.Wait()

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
