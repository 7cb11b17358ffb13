package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interntrack/internal/tracker"
)

// testStoreContract exercises the behavior every Store backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Run("UserCRUD", func(t *testing.T) { testUserCRUD(t, s) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, s) })
	t.Run("ApplicationCRUD", func(t *testing.T) { testApplicationCRUD(t, s) })
	t.Run("ApplicationOwnership", func(t *testing.T) { testApplicationOwnership(t, s) })
	t.Run("ApplicationOrdering", func(t *testing.T) { testApplicationOrdering(t, s) })
	t.Run("DeleteUserCascades", func(t *testing.T) { testDeleteUserCascades(t, s) })
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.New().String() + "@example.com"
}

func createTestUser(t *testing.T, s Store) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "Test User", uniqueEmail("user"), "hash")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DeleteUser(context.Background(), u.ID) })
	return u
}

func testUserCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	email := uniqueEmail("crud")

	exists, err := s.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := s.CreateUser(ctx, "Ada Lovelace", email, "$2a$10$hash")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	exists, err = s.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, email, got.Email)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := s.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	// Emails are matched exactly
	missing, err := s.GetUserByEmail(ctx, "UPPER-"+email)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	gone, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "missing users are nil, nil")
}

func testDuplicateEmail(t *testing.T, s Store) {
	ctx := context.Background()
	first := createTestUser(t, s)

	dup, err := s.CreateUser(ctx, "Someone Else", first.Email, "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Nil(t, dup)
}

func testApplicationCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	u := createTestUser(t, s)

	app := &tracker.Application{
		UserID:      u.ID,
		Company:     "Acme",
		Role:        "Backend Intern",
		Location:    "Remote",
		Status:      tracker.StatusApplied,
		URL:         "https://acme.example/jobs/42",
		Notes:       "referral",
		AppliedDate: "2025-02-01",
	}
	require.NoError(t, s.CreateApplication(ctx, app))
	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.True(t, app.CreatedAt.Equal(app.UpdatedAt))

	got, err := s.GetApplication(ctx, u.ID, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, tracker.StatusApplied, got.Status)
	assert.Equal(t, "2025-02-01", got.AppliedDate)
	assert.True(t, app.CreatedAt.Equal(got.CreatedAt))

	time.Sleep(2 * time.Millisecond)
	got.Status = tracker.StatusInterview
	got.Notes = ""
	require.NoError(t, s.UpdateApplication(ctx, got))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt), "updated_at should move forward")

	updated, err := s.GetApplication(ctx, u.ID, app.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, tracker.StatusInterview, updated.Status)
	assert.Equal(t, "", updated.Notes)
	assert.Equal(t, "Backend Intern", updated.Role)
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt))

	deleted, err := s.DeleteApplication(ctx, u.ID, app.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteApplication(ctx, u.ID, app.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete reports nothing removed")

	none, err := s.GetApplication(ctx, u.ID, app.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testApplicationOwnership(t *testing.T, s Store) {
	ctx := context.Background()
	owner := createTestUser(t, s)
	other := createTestUser(t, s)

	app := &tracker.Application{UserID: owner.ID, Company: "Acme", Role: "Intern", Status: tracker.StatusApplied}
	require.NoError(t, s.CreateApplication(ctx, app))

	got, err := s.GetApplication(ctx, other.ID, app.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "applications are scoped to their owner")

	list, err := s.ListApplications(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	stolen := *app
	stolen.UserID = other.ID
	stolen.Company = "Hijacked"
	err = s.UpdateApplication(ctx, &stolen)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.DeleteApplication(ctx, other.ID, app.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	still, err := s.GetApplication(ctx, owner.ID, app.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, "Acme", still.Company)
}

func testApplicationOrdering(t *testing.T, s Store) {
	ctx := context.Background()
	u := createTestUser(t, s)

	var apps []*tracker.Application
	for _, company := range []string{"First", "Second", "Third"} {
		app := &tracker.Application{UserID: u.ID, Company: company, Role: "Intern", Status: tracker.StatusApplied}
		require.NoError(t, s.CreateApplication(ctx, app))
		apps = append(apps, app)
		time.Sleep(2 * time.Millisecond)
	}

	// Touch the oldest so it becomes the most recently updated.
	apps[0].Status = tracker.StatusOffer
	require.NoError(t, s.UpdateApplication(ctx, apps[0]))

	list, err := s.ListApplications(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "First", list[0].Company)
	assert.Equal(t, "Third", list[1].Company)
	assert.Equal(t, "Second", list[2].Company)
}

func testDeleteUserCascades(t *testing.T, s Store) {
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "Cascade", uniqueEmail("cascade"), "hash")
	require.NoError(t, err)

	app := &tracker.Application{UserID: u.ID, Company: "Acme", Role: "Intern", Status: tracker.StatusApplied}
	require.NoError(t, s.CreateApplication(ctx, app))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	list, err := s.ListApplications(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
