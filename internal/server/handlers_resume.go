package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/ingestion"
	"github.com/jonathan/interntrack/internal/types"
)

// Error messages returned by the resume endpoints.
const (
	msgResumeTextRequired = "resumeText is required"
	msgPDFRequired        = "PDF file is required (field name: file)"
	msgPDFNoText          = "Could not extract text from the PDF. Try a text-based PDF (not scanned images)."
	msgPDFParseFailed     = "Failed to parse PDF. Make sure it's a valid, text-based PDF."
)

// multipartOverhead is the room left for form fields next to the uploaded file.
const multipartOverhead = 1 << 20

var requestValidator = validator.New()

// handleEnhance handles POST /api/resume/enhance with the offline enhancer.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	in, ok := s.enhanceInput(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.enhancer.EnhanceOffline(in))
}

// handleEnhanceAgent handles POST /api/resume/agent. It never fails once the input is
// valid: without an AI backend it answers with the offline fallback or the hook stub.
func (s *Server) handleEnhanceAgent(w http.ResponseWriter, r *http.Request) {
	in, ok := s.enhanceInput(w, r)
	if !ok {
		return
	}
	report := s.enhancer.EnhanceWithAI(r.Context(), in)
	s.logger.Info("agent enhancement", "mode", report.Mode)
	s.jsonResponse(w, http.StatusOK, report)
}

// enhanceInput decodes and validates an EnhanceRequest, resolving jobUrl when needed.
// On failure it has already written the response.
func (s *Server) enhanceInput(w http.ResponseWriter, r *http.Request) (enhancer.Input, bool) {
	if _, ok := s.authenticatedUser(w, r); !ok {
		return enhancer.Input{}, false
	}

	var req types.EnhanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return enhancer.Input{}, false
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		s.errorResponse(w, http.StatusBadRequest, msgResumeTextRequired)
		return enhancer.Input{}, false
	}
	if err := requestValidator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return enhancer.Input{}, false
	}

	jobDescription, err := s.resolveJobDescription(r.Context(), req.JobDescription, req.JobURL)
	if err != nil {
		s.serviceError(w, r, err)
		return enhancer.Input{}, false
	}

	return enhancer.Input{ResumeText: req.ResumeText, JobDescription: jobDescription}, true
}

// resolveJobDescription returns jobDescription, or the fetched posting text when it is
// blank and jobURL is set.
func (s *Server) resolveJobDescription(ctx context.Context, jobDescription, jobURL string) (string, error) {
	if strings.TrimSpace(jobDescription) != "" || jobURL == "" {
		return jobDescription, nil
	}
	if s.fetcher == nil {
		return "", &ErrValidation{Field: "jobUrl", Message: "job posting fetching is disabled"}
	}

	doc, err := ingestion.FromURL(ctx, s.fetcher, jobURL)
	if err != nil {
		s.logger.Warn("job posting fetch failed", "url", jobURL, "error", err)
		return "", &ErrUpstream{Message: "Could not fetch the job posting from jobUrl", Cause: err}
	}
	s.logger.Debug("job posting fetched", "url", jobURL, "platform", doc.Metadata.Platform, "chars", doc.Metadata.Chars)
	return doc.Text, nil
}

// handleEnhancePDF handles POST /api/resume/enhance-pdf: a multipart upload with the
// resume in "file" and optional "jobDescription" or "jobUrl" fields.
func (s *Server) handleEnhancePDF(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticatedUser(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, s.uploadTooLargeMessage())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, msgPDFRequired)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgPDFRequired)
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, s.uploadTooLargeMessage())
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		s.serviceError(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, s.uploadTooLargeMessage())
		return
	}

	resumeText, err := ingestion.ExtractPDFText(data)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoText) {
			s.errorResponse(w, http.StatusBadRequest, msgPDFNoText)
			return
		}
		s.logger.Warn("PDF parse failed", "filename", header.Filename, "bytes", len(data), "error", err)
		s.errorResponse(w, http.StatusInternalServerError, msgPDFParseFailed)
		return
	}

	jobURL := r.FormValue("jobUrl")
	if jobURL != "" {
		if err := requestValidator.Var(jobURL, "url,max=2048"); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "validation error: JobURL - url")
			return
		}
	}
	jobDescription, err := s.resolveJobDescription(r.Context(), r.FormValue("jobDescription"), jobURL)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	report := s.enhancer.EnhanceOffline(enhancer.Input{ResumeText: resumeText, JobDescription: jobDescription})
	report.ExtractedChars = utf8.RuneCountInString(resumeText)
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) uploadTooLargeMessage() string {
	return fmt.Sprintf("PDF file is too large (max %d MB)", s.maxUploadBytes>>20)
}
