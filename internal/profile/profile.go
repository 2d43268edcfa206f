// Package profile reads and edits the customer profile.
package profile

import (
	"context"
	"strings"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/utils"
)

const (
	MsgUpdated       = "Profile updated successfully"
	MsgNameRequired  = "Full name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email"
)

// Backend is the part of the API the profile screens use.
type Backend interface {
	GetProfile(ctx context.Context) (*dto.Profile, error)
	UpdateProfile(ctx context.Context, in dto.ProfileUpdate) error
}

// Form is the edit-profile form.
type Form struct {
	FullName string
	Email    string
}

// FieldErrors maps form fields to their problems.
type FieldErrors map[string]string

// Validate checks the form the same way the edit screen does.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.FullName) == "" {
		errs["fullName"] = MsgNameRequired
	}
	switch email := strings.TrimSpace(f.Email); {
	case email == "":
		errs["email"] = MsgEmailRequired
	case !utils.ValidEmail(email):
		errs["email"] = MsgEmailInvalid
	}
	return errs
}

type Service struct {
	api Backend
}

func New(backend Backend) *Service {
	return &Service{api: backend}
}

// Get fetches the profile.
func (s *Service) Get(ctx context.Context) (*dto.Profile, error) {
	return s.api.GetProfile(ctx)
}

// Update validates form and saves it. An invalid form makes no request.
func (s *Service) Update(ctx context.Context, form Form) error {
	if errs := form.Validate(); len(errs) > 0 {
		if msg, ok := errs["fullName"]; ok {
			return api.NewValidationError(msg)
		}
		return api.NewValidationError(errs["email"])
	}
	return s.api.UpdateProfile(ctx, dto.ProfileUpdate{
		FullName: strings.TrimSpace(form.FullName),
		Email:    strings.TrimSpace(form.Email),
	})
}

// DisplayName is the name shown in the profile header.
func DisplayName(p *dto.Profile) string {
	if p == nil || strings.TrimSpace(p.FullName) == "" {
		return "USER"
	}
	return p.FullName
}
