package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

// TestInitLoggersWritesToFile tests that the package loggers write to the configured log file
func TestInitLoggersWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skv.log")

	config := DefaultServerConfig()
	config.LogFile = path
	config.LogLevel = "warn"

	if err := InitLoggers(config); err != nil {
		t.Fatalf("InitLoggers() returned error: %v", err)
	}
	t.Cleanup(func() { _ = InitLoggers(DefaultServerConfig()) })

	log := logger.GetLogger("rpc")
	log.Infof("filtered %s", "message")
	log.Warningf("hello %s", "file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "hello file") || !strings.Contains(out, "rpc") {
		t.Errorf("log file does not contain the warning:\n%s", out)
	}
	if strings.Contains(out, "filtered message") {
		t.Errorf("log file contains a message below the configured level:\n%s", out)
	}
}

// TestInitLoggersSetsPackageLevels tests that the level reaches every package logger
func TestInitLoggersSetsPackageLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skv.log")

	config := DefaultServerConfig()
	config.LogFile = path
	config.LogLevel = "debug"

	if err := InitLoggers(config); err != nil {
		t.Fatalf("InitLoggers() returned error: %v", err)
	}
	t.Cleanup(func() { _ = InitLoggers(DefaultServerConfig()) })

	for _, name := range loggerNames {
		logger.GetLogger(name).Debugf("debug from %s", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	for _, name := range loggerNames {
		if !strings.Contains(string(data), "debug from "+name) {
			t.Errorf("debug message of logger %q missing:\n%s", name, data)
		}
	}
}

func TestInitLoggersInvalidLevel(t *testing.T) {
	config := DefaultServerConfig()
	config.LogLevel = "chatty"

	if err := InitLoggers(config); err == nil {
		t.Errorf("InitLoggers() with invalid level should fail")
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l := CreateLogger("test").(*sKVLogger)
	l.SetLevel(logger.ERROR)

	if l.enabled(logger.WARNING) {
		t.Errorf("warning should be filtered at level error")
	}
	if !l.enabled(logger.ERROR) {
		t.Errorf("error should pass at level error")
	}
}
