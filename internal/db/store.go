package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jonathan/interntrack/internal/config"
	"github.com/jonathan/interntrack/internal/tracker"
)

// Store is the persistence surface shared by the PostgreSQL and SQLite backends.
type Store interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	ListApplications(ctx context.Context, userID uuid.UUID) ([]tracker.Application, error)
	GetApplication(ctx context.Context, userID, id uuid.UUID) (*tracker.Application, error)
	CreateApplication(ctx context.Context, app *tracker.Application) error
	UpdateApplication(ctx context.Context, app *tracker.Application) error
	DeleteApplication(ctx context.Context, userID, id uuid.UUID) (bool, error)

	Close() error
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Open connects to the database selected by cfg.DatabaseDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		s, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// sqlizer is implemented by every squirrel builder.
type sqlizer interface {
	ToSql() (string, []any, error)
}

// defaultNow returns the current UTC time at the microsecond precision both databases keep.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func eqID(id uuid.UUID) sq.Eq {
	return sq.Eq{"id": id.String()}
}

func eqEmail(email string) sq.Eq {
	return sq.Eq{"email": email}
}
