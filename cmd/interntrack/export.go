package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interntrack/internal/db"
	"github.com/jonathan/interntrack/internal/export"
	"github.com/jonathan/interntrack/internal/observability"
	"github.com/jonathan/interntrack/internal/tracker"
)

var (
	exportEmail string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's applications to an XLSX workbook",
	Long:  "Write every application of the account with the given email to an Excel workbook with an Applications and a Summary sheet.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportEmail, "email", "e", "", "Email of the account to export (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "applications.xlsx", "Output file, or - for stdout")

	_ = exportCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(configPath)
	if err != nil {
		return err
	}

	store, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if exportOut == "-" {
		_, err := exportApplications(cmd.Context(), store, exportEmail, cmd.OutOrStdout(), time.Now())
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	stats, err := exportApplications(cmd.Context(), store, exportEmail, f, time.Now())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(exportOut)
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d applications to %s\n", stats.Total, exportOut)
	observability.NewPrinter(cmd.ErrOrStderr()).PrintStats(stats)
	return nil
}

// exportApplications writes the workbook for the account with email and returns
// the stats of the exported applications.
func exportApplications(ctx context.Context, store db.Store, email string, w io.Writer, now time.Time) (tracker.Stats, error) {
	user, err := store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return tracker.Stats{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return tracker.Stats{}, fmt.Errorf("no account with email %s", email)
	}

	apps, err := store.ListApplications(ctx, user.ID)
	if err != nil {
		return tracker.Stats{}, fmt.Errorf("failed to list applications: %w", err)
	}
	if err := export.WriteApplicationsXLSX(w, apps, now); err != nil {
		return tracker.Stats{}, err
	}
	return tracker.ComputeStats(apps, now), nil
}
