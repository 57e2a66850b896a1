package logging

import (
	"sync"
	"testing"
)

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError) {
		t.Error("log levels are not ordered by severity")
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		expected LogLevel
	}{
		{"Debug via LOG_LEVEL", "LOG_LEVEL", "debug", LevelDebug},
		{"Info via LOG_LEVEL", "LOG_LEVEL", "info", LevelInfo},
		{"Warn via LOG_LEVEL", "LOG_LEVEL", "warn", LevelWarn},
		{"Warning alias", "LOG_LEVEL", "warning", LevelWarn},
		{"Error via LOG_LEVEL", "LOG_LEVEL", "error", LevelError},
		{"Case insensitive", "LOG_LEVEL", "DEBUG", LevelDebug},
		{"Default on garbage", "LOG_LEVEL", "chatty", LevelInfo},
		{"Debug via DEBUG flag", "DEBUG", "1", LevelDebug},
		{"DEBUG flag with false value ignored", "DEBUG", "0", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset the sync.Once so each case re-reads the environment.
			levelOnce = sync.Once{}
			t.Setenv(tt.envVar, tt.envValue)

			if got := GetLevel(); got != tt.expected {
				t.Errorf("GetLevel() with %s=%s = %v, want %v", tt.envVar, tt.envValue, got, tt.expected)
			}
		})
	}

	// Leave the package in a predictable state for other tests.
	levelOnce = sync.Once{}
}

func TestIsDebugEnabled(t *testing.T) {
	levelOnce = sync.Once{}
	t.Setenv("LOG_LEVEL", "debug")
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false with LOG_LEVEL=debug")
	}

	levelOnce = sync.Once{}
	t.Setenv("LOG_LEVEL", "info")
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true with LOG_LEVEL=info")
	}

	levelOnce = sync.Once{}
}
