package config

import (
	"os"
	"path/filepath"
)

const (
	storageDriverVar     = "SUBFINDER_STORAGE_DRIVER"
	storagePathVar       = "SUBFINDER_STORAGE_PATH"
	storagePassphraseVar = "SUBFINDER_STORAGE_PASSPHRASE"
)

const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStoragePath() string
	GetStoragePassphrase() string
}

type Storage struct {
	file *FileValues
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageDriver() string {
	return GetEnv(storageDriverVar, orDefault(s.file.Storage.Driver, StorageDriverFile))
}

// GetStoragePath defaults to ~/.subfinder/session.json (session.db for sqlite).
func (s Storage) GetStoragePath() string {
	if p := GetEnv(storagePathVar, s.file.Storage.Path); p != "" {
		return p
	}
	name := "session.json"
	if s.GetStorageDriver() == StorageDriverSQLite {
		name = "session.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".subfinder", name)
	}
	return filepath.Join(home, ".subfinder", name)
}

// GetStoragePassphrase enables encryption at rest for the file driver when non-empty.
func (s Storage) GetStoragePassphrase() string {
	return GetEnv(storagePassphraseVar, s.file.Storage.Passphrase)
}
