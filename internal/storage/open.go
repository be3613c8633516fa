package storage

import (
	"context"
	"fmt"
	"time"
)

// Options selects and configures a backend.
type Options struct {
	Driver          string // memory, postgres, sqlite, mongo or firestore
	DSN             string // postgres dsn, sqlite path or mongo uri
	Database        string // mongo database name
	ProjectID       string // firestore project
	CredentialsFile string
	ConnectTimeout  time.Duration
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch opts.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return OpenPostgres(ctx, opts.DSN)
	case "sqlite":
		return OpenSQLite(ctx, opts.DSN)
	case "mongo":
		return OpenMongo(ctx, opts.DSN, opts.Database, timeout)
	case "firestore":
		return OpenFirestore(context.WithoutCancel(ctx), opts.ProjectID, opts.CredentialsFile)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
