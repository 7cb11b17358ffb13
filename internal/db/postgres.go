// Package db provides persistence for users and applications on PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interntrack/internal/tracker"
)

// pgUniqueViolation is the SQLSTATE for unique constraint failures.
const pgUniqueViolation = "23505"

// PostgresStore wraps a PostgreSQL connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect establishes a connection pool to the database and applies pending migrations.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, now: defaultNow}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	migrations, err := loadMigrations("postgres")
	if err != nil {
		return err
	}

	for _, m := range migrations {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_version WHERE version = $1)`, m.version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if exists {
			continue
		}

		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.sql); err != nil {
				return fmt.Errorf("applying migration %d: %w", m.version, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.version); err != nil {
				return fmt.Errorf("recording migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckEmailExists reports whether a user with this exact email exists.
func (s *PostgresStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	query, args, err := countUsersByEmail(postgresSQL, email).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a user and returns it with its generated ID.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	query, args, err := insertUser(postgresSQL, u, u.CreatedAt).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID. Returns nil, nil when no user matches.
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.getUser(ctx, selectUser(postgresSQL, eqID(id)))
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when no user matches.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, selectUser(postgresSQL, eqEmail(email)))
}

func (s *PostgresStore) getUser(ctx context.Context, b sqlizer) (*User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var u User
	err = s.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// DeleteUser removes a user and, through the foreign key, their applications.
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	query, args, err := deleteUser(postgresSQL, id).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListApplications returns the user's applications ordered by updated_at descending.
func (s *PostgresStore) ListApplications(ctx context.Context, userID uuid.UUID) ([]tracker.Application, error) {
	query, args, err := selectApplications(postgresSQL, userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []tracker.Application{}
	for rows.Next() {
		var a tracker.Application
		if err := scanPostgresApplication(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

// GetApplication returns one of the user's applications, or nil, nil when it does not exist.
func (s *PostgresStore) GetApplication(ctx context.Context, userID, id uuid.UUID) (*tracker.Application, error) {
	query, args, err := selectApplication(postgresSQL, userID, id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var a tracker.Application
	err = scanPostgresApplication(s.pool.QueryRow(ctx, query, args...), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// CreateApplication assigns an ID and timestamps to app and inserts it.
func (s *PostgresStore) CreateApplication(ctx context.Context, app *tracker.Application) error {
	now := s.now()
	app.ID = uuid.New()
	app.CreatedAt = now
	app.UpdatedAt = now

	query, args, err := insertApplication(postgresSQL, app, now, now).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// UpdateApplication writes every mutable field of app and bumps updated_at.
// Returns ErrNotFound when app does not exist for app.UserID.
func (s *PostgresStore) UpdateApplication(ctx context.Context, app *tracker.Application) error {
	now := s.now()

	query, args, err := updateApplication(postgresSQL, app, now).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %s: %w", app.ID, ErrNotFound)
	}
	app.UpdatedAt = now
	return nil
}

// DeleteApplication removes one of the user's applications and reports whether a row was deleted.
func (s *PostgresStore) DeleteApplication(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query, args, err := deleteApplication(postgresSQL, userID, id).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPostgresApplication(row pgx.Row, a *tracker.Application) error {
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Role, &a.Location, &status,
		&a.URL, &a.Notes, &a.AppliedDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	a.Status = tracker.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return nil
}
