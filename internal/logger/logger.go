package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	L       *zap.Logger
	S       *zap.SugaredLogger
	logFile *os.File
)

// Init initializes the global logger.
// Logs are written to ~/.config/tabedit/tabedit.log unless TABEDIT_LOG_FILE is set.
func Init(debug bool) error {
	logPath, err := getLogPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	// Configure encoder
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// Set log level
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	// Create core that writes to file
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(logFile),
		level,
	)

	Use(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
	S.Info("logger initialized", "path", logPath, "debug", debug)
	return nil
}

// Use installs l as the global logger. Tests pass an observer core here.
// A nil l turns logging off again.
func Use(l *zap.Logger) {
	L = l
	S = nil
	if l != nil {
		S = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	}
}

// Close flushes and closes the logger
func Close() {
	if L != nil {
		_ = L.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}

// getLogPath returns the path to the log file
func getLogPath() (string, error) {
	if v := os.Getenv("TABEDIT_LOG_FILE"); v != "" {
		return v, nil
	}

	// Use config directory
	if v := os.Getenv("TABEDIT_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "tabedit.log"), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "tabedit", "tabedit.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabedit", "tabedit.log"), nil
}

// Convenience functions for common logging patterns

func Debug(msg string, keysAndValues ...any) {
	if S != nil {
		S.Debugw(msg, keysAndValues...)
	}
}

func Info(msg string, keysAndValues ...any) {
	if S != nil {
		S.Infow(msg, keysAndValues...)
	}
}

func Warn(msg string, keysAndValues ...any) {
	if S != nil {
		S.Warnw(msg, keysAndValues...)
	}
}

func Error(msg string, keysAndValues ...any) {
	if S != nil {
		S.Errorw(msg, keysAndValues...)
	}
}

// Named returns a child logger for one component. It falls back to a no-op
// logger before Init so packages can hold on to it safely.
func Named(name string) *zap.Logger {
	if L == nil {
		return zap.NewNop()
	}
	return L.Named(name)
}
