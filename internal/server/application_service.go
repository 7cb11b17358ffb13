package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interntrack/internal/db"
	"github.com/jonathan/interntrack/internal/tracker"
	"github.com/jonathan/interntrack/internal/types"
)

// ApplicationService owns the per-user application CRUD rules.
type ApplicationService struct {
	store db.Store
	now   func() time.Time
}

// NewApplicationService creates a new ApplicationService backed by store.
func NewApplicationService(store db.Store) *ApplicationService {
	return &ApplicationService{store: store, now: time.Now}
}

// List returns the user's applications, most recently updated first.
func (s *ApplicationService) List(ctx context.Context, userID uuid.UUID) ([]tracker.Application, error) {
	apps, err := s.store.ListApplications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// Create stores a new application for the user, defaulting the status to Applied.
func (s *ApplicationService) Create(ctx context.Context, userID uuid.UUID, req *types.CreateApplicationRequest) (*tracker.Application, error) {
	app := req.ToApplication()
	app.UserID = userID
	if err := s.store.CreateApplication(ctx, &app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &app, nil
}

// Update merges the supplied fields into the user's application.
// Applications owned by someone else are reported as not found.
func (s *ApplicationService) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateApplicationRequest) (*tracker.Application, error) {
	app, err := s.store.GetApplication(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, &ErrApplicationNotFound{ID: id}
	}

	req.ApplyTo(app)
	if err := s.store.UpdateApplication(ctx, app); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrApplicationNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return app, nil
}

// Delete removes the user's application and reports whether anything was deleted.
func (s *ApplicationService) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	deleted, err := s.store.DeleteApplication(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	return deleted, nil
}

// Stats computes pipeline analytics over all of the user's applications.
func (s *ApplicationService) Stats(ctx context.Context, userID uuid.UUID) (tracker.Stats, error) {
	apps, err := s.List(ctx, userID)
	if err != nil {
		return tracker.Stats{}, err
	}
	return tracker.ComputeStats(apps, s.now()), nil
}
