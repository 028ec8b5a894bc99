package logger

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log      *zap.Logger
	onceInit sync.Once
)

// Init builds the process-wide logger once. Later calls return the first
// result.
func Init(level, format string, meta ...zap.Field) error {
	var initErr error
	onceInit.Do(func() {
		instance, err := New(level, format)
		if err != nil {
			initErr = err
			return
		}
		Log = instance.With(meta...)
	})
	if initErr != nil {
		return initErr
	}
	if Log == nil {
		return errors.New("logger not initialized")
	}
	return nil
}

// New returns a logger writing to stdout at level in the given encoding,
// "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	cfg, err := configure(lvl, format)
	if err != nil {
		return nil, err
	}
	instance, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return instance, nil
}

func configure(level zapcore.Level, format string) (zap.Config, error) {
	encoder := zap.NewProductionEncoderConfig()
	encoder.TimeKey = "timestamp"
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeCaller = zapcore.ShortCallerEncoder
	encoder.EncodeDuration = zapcore.SecondsDurationEncoder
	encoder.EncodeName = zapcore.FullNameEncoder
	encoder.CallerKey = "caller"

	switch format {
	case "", "console":
		format = "console"
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		encoder.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		return zap.Config{}, errors.Errorf("unsupported log format %q", format)
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: level > zapcore.DebugLevel,
		Encoding:          format,
		EncoderConfig:     encoder,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}
