package db

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jonathan/interntrack/internal/tracker"
)

// Statement builders per dialect. Both stores share the query shapes below.
// UUIDs go into sq.Eq as strings; squirrel would expand a [16]byte into an IN list.
var (
	postgresSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	sqliteSQL   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

var applicationColumns = []string{
	"id", "user_id", "company", "role", "location", "status",
	"url", "notes", "applied_date", "created_at", "updated_at",
}

func countUsersByEmail(b sq.StatementBuilderType, email string) sq.SelectBuilder {
	return b.Select("COUNT(*)").From("users").Where(sq.Eq{"email": email})
}

func selectUser(b sq.StatementBuilderType, where sq.Sqlizer) sq.SelectBuilder {
	return b.Select(userColumns...).From("users").Where(where)
}

func insertUser(b sq.StatementBuilderType, u *User, createdAt any) sq.InsertBuilder {
	return b.Insert("users").
		Columns(userColumns...).
		Values(u.ID.String(), u.Name, u.Email, u.PasswordHash, createdAt)
}

func deleteUser(b sq.StatementBuilderType, id uuid.UUID) sq.DeleteBuilder {
	return b.Delete("users").Where(sq.Eq{"id": id.String()})
}

// selectApplications lists a user's applications, most recently updated first.
func selectApplications(b sq.StatementBuilderType, userID uuid.UUID) sq.SelectBuilder {
	return b.Select(applicationColumns...).
		From("applications").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("updated_at DESC", "created_at DESC")
}

func selectApplication(b sq.StatementBuilderType, userID, id uuid.UUID) sq.SelectBuilder {
	return b.Select(applicationColumns...).
		From("applications").
		Where(sq.Eq{"id": id.String(), "user_id": userID.String()})
}

func insertApplication(b sq.StatementBuilderType, a *tracker.Application, createdAt, updatedAt any) sq.InsertBuilder {
	return b.Insert("applications").
		Columns(applicationColumns...).
		Values(a.ID.String(), a.UserID.String(), a.Company, a.Role, a.Location, string(a.Status),
			a.URL, a.Notes, a.AppliedDate, createdAt, updatedAt)
}

func updateApplication(b sq.StatementBuilderType, a *tracker.Application, updatedAt any) sq.UpdateBuilder {
	return b.Update("applications").
		SetMap(map[string]any{
			"company":      a.Company,
			"role":         a.Role,
			"location":     a.Location,
			"status":       string(a.Status),
			"url":          a.URL,
			"notes":        a.Notes,
			"applied_date": a.AppliedDate,
			"updated_at":   updatedAt,
		}).
		Where(sq.Eq{"id": a.ID.String(), "user_id": a.UserID.String()})
}

func deleteApplication(b sq.StatementBuilderType, userID, id uuid.UUID) sq.DeleteBuilder {
	return b.Delete("applications").Where(sq.Eq{"id": id.String(), "user_id": userID.String()})
}
