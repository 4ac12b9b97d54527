package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  *zap.SugaredLogger
	closer  io.Closer
	enabled bool
)

// LogPath returns ~/.config/go-noteroll/debug.log
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-noteroll", "debug.log"), nil
}

// Enable starts debug logging to ~/.config/go-noteroll/debug.log. Calling it
// while logging is on leaves the current log alone.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	path, err := LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	start(f, f)
	return nil
}

// EnableTo logs to w instead of the debug file. w is not closed by Disable.
func EnableTo(w io.Writer) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	start(w, nil)
	return nil
}

// start builds the zap core. Caller holds mu.
func start(w io.Writer, c io.Closer) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeCaller = nil
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)

	logger = zap.New(core).Sugar()
	closer = c
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	logger.Infow("=== Debug logging started ===", "category", "debug")
	_ = logger.Sync()
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if closer != nil {
		closer.Close()
		closer = nil
	}
	enabled = false
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}

	logger.Infow(fmt.Sprintf(format, args...), "category", category)
	_ = logger.Sync() // flush immediately so we see logs even on crash
}

var counters = make(map[string]int)

// LogEvery logs only every N calls (use for high-frequency events). n <= 1
// logs every call.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
