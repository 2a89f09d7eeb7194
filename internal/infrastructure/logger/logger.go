package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process logger is built.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, error, fatal.
	Level string
	// Format selects the encoder: "json" for machines, "console" for humans.
	Format string
	// Output is "stdout", "stderr", or a file path.
	Output string
	// TimeFormat is the time layout for log timestamps.
	TimeFormat string
}

// DefaultConfig is what local development gets: colored console output at info.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// ProductionConfig emits JSON lines suitable for log shipping.
func ProductionConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z0700",
	}
}

// New builds a zap logger from cfg. Callers own the returned logger and
// should flush it with Sync on shutdown.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	core := zapcore.NewCore(
		newEncoder(cfg),
		openSink(cfg.Output),
		zap.NewAtomicLevelAt(zapLevel(cfg.Level)),
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// zapLevel maps a config string to a zap level. Unknown strings fall back
// to info rather than erroring, so a typo in config never silences the
// logger entirely.
func zapLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(cfg *Config) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	encCfg.EncodeDuration = zapcore.MillisDurationEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	if strings.ToLower(cfg.Format) == "json" {
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

// openSink resolves the output target. A file path that cannot be opened
// degrades to stdout with a note on stderr; losing the log stream is worse
// than logging to the wrong place.
func openSink(output string) zapcore.WriteSyncer {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout)
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: cannot open %s, writing to stdout: %v\n", output, err)
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.AddSync(f)
	}
}

// Sync flushes buffered entries. Sync errors on stdout and stderr are
// expected on some platforms and safe to ignore at shutdown.
func Sync(l *zap.Logger) error {
	return l.Sync()
}
