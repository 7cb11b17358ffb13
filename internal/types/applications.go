package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interntrack/internal/tracker"
)

// CreateApplicationRequest represents the body of POST /api/apps.
type CreateApplicationRequest struct {
	Company     string `json:"company" validate:"required,min=1,max=120"`
	Role        string `json:"role" validate:"required,min=1,max=120"`
	Location    string `json:"location" validate:"max=120"`
	Status      string `json:"status" validate:"omitempty,oneof=Applied Interview Offer Rejected Ghosted Accepted"`
	URL         string `json:"url" validate:"max=400"`
	Notes       string `json:"notes" validate:"max=5000"`
	AppliedDate string `json:"applied_date" validate:"max=40"`
}

// UpdateApplicationRequest represents the body of PUT /api/apps/{id}.
// Nil fields are left unchanged; supplied fields are validated like on create.
type UpdateApplicationRequest struct {
	Company     *string `json:"company,omitempty" validate:"omitnil,min=1,max=120"`
	Role        *string `json:"role,omitempty" validate:"omitnil,min=1,max=120"`
	Location    *string `json:"location,omitempty" validate:"omitnil,max=120"`
	Status      *string `json:"status,omitempty" validate:"omitnil,oneof=Applied Interview Offer Rejected Ghosted Accepted"`
	URL         *string `json:"url,omitempty" validate:"omitnil,max=400"`
	Notes       *string `json:"notes,omitempty" validate:"omitnil,max=5000"`
	AppliedDate *string `json:"applied_date,omitempty" validate:"omitnil,max=40"`
}

// DeleteResponse is returned by DELETE /api/apps/{id}.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// Validate validates the CreateApplicationRequest using the validator.
func (r *CreateApplicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateApplicationRequest using the validator.
func (r *UpdateApplicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToApplication builds a new application from the request, applying defaults.
func (r *CreateApplicationRequest) ToApplication() tracker.Application {
	status := tracker.Status(r.Status)
	if status == "" {
		status = tracker.DefaultStatus
	}
	return tracker.Application{
		Company:     r.Company,
		Role:        r.Role,
		Location:    r.Location,
		Status:      status,
		URL:         r.URL,
		Notes:       r.Notes,
		AppliedDate: r.AppliedDate,
	}
}

// ApplyTo merges the supplied fields into app.
func (r *UpdateApplicationRequest) ApplyTo(app *tracker.Application) {
	if r.Company != nil {
		app.Company = *r.Company
	}
	if r.Role != nil {
		app.Role = *r.Role
	}
	if r.Location != nil {
		app.Location = *r.Location
	}
	if r.Status != nil {
		app.Status = tracker.Status(*r.Status)
	}
	if r.URL != nil {
		app.URL = *r.URL
	}
	if r.Notes != nil {
		app.Notes = *r.Notes
	}
	if r.AppliedDate != nil {
		app.AppliedDate = *r.AppliedDate
	}
}
