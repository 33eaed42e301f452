package common

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// loggerNames are the package loggers used throughout sKV
var loggerNames = []string{"rpc", "transport/rpc", "cli"}

// sink is the zap logger all package loggers write to. It is swapped by InitLoggers.
var sink atomic.Pointer[zap.Logger]

var factoryOnce sync.Once

func init() {
	sink.Store(newZapLogger(zapcore.AddSync(os.Stdout)))
}

// sKVLogger implements the ILogger interface on top of zap
type sKVLogger struct {
	name  string
	level atomic.Int32
}

func (l *sKVLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *sKVLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *sKVLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		sink.Load().Debug(l.format(format, args...))
	}
}

func (l *sKVLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		sink.Load().Info(l.format(format, args...))
	}
}

func (l *sKVLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		sink.Load().Warn(l.format(format, args...))
	}
}

func (l *sKVLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		sink.Load().Error(l.format(format, args...))
	}
}

func (l *sKVLogger) Panicf(format string, args ...interface{}) {
	msg := l.format(format, args...)
	sink.Load().Error(msg)
	panic(msg)
}

// format prefixes the message with the padded logger name
func (l *sKVLogger) format(format string, args ...interface{}) string {
	return fmt.Sprintf("%-15s | %s", l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the logger.Factory interface
func CreateLogger(pkgName string) logger.ILogger {
	l := &sKVLogger{name: pkgName}
	l.level.Store(int32(logger.INFO))
	return l
}

// newZapLogger builds the console logger, level filtering is done by sKVLogger
func newZapLogger(w zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.CallerKey = zapcore.OmitKey

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), w, zapcore.DebugLevel)
	return zap.New(core)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom logger factory and applies the level and
// output of the given configuration to all sKV loggers. If LogFile is set the
// output goes to a size-rotated file instead of stdout.
func InitLoggers(config ServerConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	if config.LogFile != "" {
		sink.Store(newZapLogger(zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})))
	} else {
		sink.Store(newZapLogger(zapcore.AddSync(os.Stdout)))
	}

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}
