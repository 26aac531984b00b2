package config

import (
	"os"
	"time"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	logLevelVar = "SUBFINDER_LOG_LEVEL"
)

type EnvVars struct {
	file *FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, orDefault(e.file.AppName, "Sub Finder"))
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envVar, orDefault(e.file.Env, "DEV"))
}

// GetLogLevel defaults to warn so log lines do not interleave with console output.
func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, orDefault(e.file.LogLevel, "warn"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses envVar, then fileValue, with time.ParseDuration and falls
// back to defaultValue when neither is set or parseable.
func GetDurationEnv(envVar, fileValue string, defaultValue time.Duration) time.Duration {
	for _, raw := range []string{os.Getenv(envVar), fileValue} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
