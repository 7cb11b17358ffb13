package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/interntrack/internal/db"
	"github.com/jonathan/interntrack/internal/export"
	"github.com/jonathan/interntrack/internal/tracker"
)

func TestExportApplications(t *testing.T) {
	ctx := context.Background()
	store, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	user, err := store.CreateUser(ctx, "Ada Lovelace", "ada@example.com", "hash")
	require.NoError(t, err)
	for _, company := range []string{"Acme", "Globex", "Initech"} {
		app := &tracker.Application{UserID: user.ID, Company: company, Role: "Intern", Status: tracker.StatusApplied}
		require.NoError(t, store.CreateApplication(ctx, app))
	}

	var buf bytes.Buffer
	stats, err := exportApplications(ctx, store, " ADA@example.com ", &buf, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Counts[tracker.StatusApplied])

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.ApplicationsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Contains(t, f.GetSheetList(), export.SummarySheet)
}

func TestExportApplications_UnknownUser(t *testing.T) {
	ctx := context.Background()
	store, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	var buf bytes.Buffer
	_, err = exportApplications(ctx, store, "nobody@example.com", &buf, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account")
	assert.Zero(t, buf.Len())
}
