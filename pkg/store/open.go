package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

const (
	RecordsDir    = "records"
	DefaultDBFile = "proposal.db"
)

// Open builds the backend named by settings. Relative file and sqlite
// paths resolve against projectDir.
func Open(ctx context.Context, settings models.StoreSettings, projectDir string) (Store, error) {
	switch settings.Backend {
	case "", "file":
		path := settings.Path
		if path == "" {
			path = RecordsDir
		}
		return NewFileStore(resolve(projectDir, path))
	case "sqlite":
		path := settings.Path
		if path == "" {
			path = DefaultDBFile
		}
		return NewSQLiteStore(resolve(projectDir, path))
	case "postgres":
		return NewPostgresStore(ctx, settings.DSN)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, &Error{Op: "open", Kind: settings.Backend, Err: fmt.Errorf("%w: unknown backend", ErrValidation)}
	}
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
