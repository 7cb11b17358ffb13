package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/interntrack/internal/export"
	"github.com/jonathan/interntrack/internal/server/middleware"
	"github.com/jonathan/interntrack/internal/types"
)

// authenticatedUser returns the caller's ID set by the auth middleware.
func (s *Server) authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, middleware.MsgMissingToken)
		return uuid.Nil, false
	}
	return userID, true
}

// applicationID parses the {id} path value. Malformed IDs can't match any row, so they
// are reported as uuid.Nil rather than a 400.
func applicationID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// handleListApplications handles GET /api/apps.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	apps, err := s.appService.List(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

// handleCreateApplication handles POST /api/apps.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req types.CreateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	app, err := s.appService.Create(r.Context(), userID, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleUpdateApplication handles PUT /api/apps/{id}.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	app, err := s.appService.Update(r.Context(), userID, applicationID(r), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleDeleteApplication handles DELETE /api/apps/{id}.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	deleted, err := s.appService.Delete(r.Context(), userID, applicationID(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.DeleteResponse{Deleted: deleted})
}

// handleApplicationStats handles GET /api/apps/stats.
func (s *Server) handleApplicationStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	stats, err := s.appService.Stats(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleExportApplications handles GET /api/apps/export.xlsx.
func (s *Server) handleExportApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticatedUser(w, r)
	if !ok {
		return
	}

	apps, err := s.appService.List(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	// build in memory so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := export.WriteApplicationsXLSX(&buf, apps, s.now()); err != nil {
		s.serviceError(w, r, fmt.Errorf("failed to export applications: %w", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="applications.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write export", "error", err)
	}
}
