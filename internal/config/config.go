package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

const configFileEnvVar = "SUBFINDER_CONFIG"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Storage
}

// New returns a config backed by environment variables only.
func New() Config {
	return newMainConfig(&FileValues{})
}

// Load reads the optional TOML file named by SUBFINDER_CONFIG (or path when
// non-empty). Environment variables take precedence over file values.
func Load(path string) (Config, error) {
	if path == "" {
		path = GetEnv(configFileEnvVar, "")
	}
	if path == "" {
		return New(), nil
	}

	values := &FileValues{}
	if _, err := toml.DecodeFile(path, values); err != nil {
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}
	return newMainConfig(values), nil
}

func newMainConfig(values *FileValues) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{file: values},
		API:     API{file: values},
		Session: Session{file: values},
		Storage: Storage{file: values},
	}
}
