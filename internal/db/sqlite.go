package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jonathan/interntrack/internal/tracker"
)

// sqliteTimeLayout is fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLiteStore persists users and applications in an embedded SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at path and runs pending migrations.
// Pass ":memory:" for an in-memory database (used by tests).
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single connection: avoids "database is locked" and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, now: defaultNow}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migrations that haven't been run yet.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	migrations, err := loadMigrations("sqlite")
	if err != nil {
		return err
	}

	for _, m := range migrations {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_version WHERE version = ?", m.version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

// CheckEmailExists reports whether a user with this exact email exists.
func (s *SQLiteStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	query, args, err := countUsersByEmail(sqliteSQL, email).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a user and returns it with its generated ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	query, args, err := insertUser(sqliteSQL, u, formatSQLiteTime(u.CreatedAt)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID. Returns nil, nil when no user matches.
func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.getUser(ctx, selectUser(sqliteSQL, eqID(id)))
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when no user matches.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, selectUser(sqliteSQL, eqEmail(email)))
}

func (s *SQLiteStore) getUser(ctx context.Context, b sqlizer) (*User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		u         User
		createdAt string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user and, through the foreign key, their applications.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	query, args, err := deleteUser(sqliteSQL, id).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListApplications returns the user's applications ordered by updated_at descending.
func (s *SQLiteStore) ListApplications(ctx context.Context, userID uuid.UUID) ([]tracker.Application, error) {
	query, args, err := selectApplications(sqliteSQL, userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []tracker.Application{}
	for rows.Next() {
		var a tracker.Application
		if err := scanSQLiteApplication(rows, &a); err != nil {
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
func (s *SQLiteStore) GetApplication(ctx context.Context, userID, id uuid.UUID) (*tracker.Application, error) {
	query, args, err := selectApplication(sqliteSQL, userID, id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var a tracker.Application
	err = scanSQLiteApplication(s.db.QueryRowContext(ctx, query, args...), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// CreateApplication assigns an ID and timestamps to app and inserts it.
func (s *SQLiteStore) CreateApplication(ctx context.Context, app *tracker.Application) error {
	now := s.now()
	app.ID = uuid.New()
	app.CreatedAt = now
	app.UpdatedAt = now

	ts := formatSQLiteTime(now)
	query, args, err := insertApplication(sqliteSQL, app, ts, ts).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// UpdateApplication writes every mutable field of app and bumps updated_at.
// Returns ErrNotFound when app does not exist for app.UserID.
func (s *SQLiteStore) UpdateApplication(ctx context.Context, app *tracker.Application) error {
	now := s.now()

	query, args, err := updateApplication(sqliteSQL, app, formatSQLiteTime(now)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %s: %w", app.ID, ErrNotFound)
	}
	app.UpdatedAt = now
	return nil
}

// DeleteApplication removes one of the user's applications and reports whether a row was deleted.
func (s *SQLiteStore) DeleteApplication(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query, args, err := deleteApplication(sqliteSQL, userID, id).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	return n > 0, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteApplication(row rowScanner, a *tracker.Application) error {
	var status, createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Role, &a.Location, &status,
		&a.URL, &a.Notes, &a.AppliedDate, &createdAt, &updatedAt); err != nil {
		return err
	}
	a.Status = tracker.Status(status)

	var err error
	if a.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return err
	}
	if a.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
}
