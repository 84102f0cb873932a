package storage

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenBackend opens the named backend rooted at dataDir.
func OpenBackend(name, dataDir string) (Backend, error) {
	switch name {
	case BackendFile, "":
		return NewFileBackend(dataDir)
	case BackendSQLite:
		return NewSQLiteBackend(filepath.Join(dataDir, SQLiteFileName))
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (expected %s, %s or %s)", name, BackendFile, BackendSQLite, BackendMemory)
	}
}

// Open returns a Store for the named backend. If the backend cannot be
// opened the failure is logged and the store runs in memory only, so the
// caller keeps working without persistence. An unknown name is an error.
func Open(name, dataDir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch name {
	case BackendFile, BackendSQLite, BackendMemory, "":
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (expected %s, %s or %s)", name, BackendFile, BackendSQLite, BackendMemory)
	}

	backend, err := OpenBackend(name, dataDir)
	if err != nil {
		logger.Warn("storage unavailable, continuing in memory",
			zap.String("backend", name),
			zap.String("data_dir", dataDir),
			zap.Error(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)))
		backend = NewMemoryBackend()
	}
	return NewStore(backend, logger), nil
}
