package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"studioadmin/models"
	"studioadmin/utils"
)

// ProfileInput is the payload accepted by the profile update operation.
// Email is deliberately absent: email changes go through the dedicated
// email-change operation so the identity provider stays in sync.
type ProfileInput struct {
	DisplayName       string `json:"display_name" validate:"required,max=80"`
	Bio               string `json:"bio" validate:"max=500"`
	Timezone          string `json:"timezone" validate:"required,timezone"`
	AvatarURL         string `json:"avatar_url" validate:"omitempty,url,max=512"`
	AvatarStoragePath string `json:"avatar_storage_path" validate:"omitempty,max=512"`
}

// EmailChangeInput is the payload for the email-change operation.
type EmailChangeInput struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// AppearanceInput mirrors models.AppearanceSettings with validation rules.
type AppearanceInput struct {
	Theme         string `json:"theme" validate:"required,oneof=light dark system"`
	Accent        string `json:"accent" validate:"required,hexcolor"`
	Density       string `json:"density" validate:"required,oneof=comfortable compact"`
	ReducedMotion bool   `json:"reduced_motion"`
}

// Validator wraps a validator instance with the settings-specific rules.
// Constructed once and injected; no package-level state.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator for settings payloads.
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateProfile sanitizes free-text fields and checks the profile rules.
// The input is mutated: display name and bio are stripped of HTML.
func (v *Validator) ValidateProfile(in *ProfileInput) error {
	in.DisplayName = utils.SanitizeText(in.DisplayName)
	in.Bio = utils.SanitizeText(in.Bio)
	return v.check(in)
}

// ValidateEmail checks email syntax for the email-change operation.
func (v *Validator) ValidateEmail(email string) error {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return utils.ValidationError("Invalid email address", err).
			WithContext("fields", []string{"email"})
	}
	return nil
}

// ValidateNotifications checks the notification payload. The shape itself
// is enforced by the typed struct and strict JSON decoding at the handler
// boundary; this keeps the validation entry point uniform.
func (v *Validator) ValidateNotifications(in *models.NotificationSettings) error {
	return v.check(in)
}

// ValidateAppearance checks enum membership and accent color syntax.
// Contrast gating is a separate step (CheckContrast).
func (v *Validator) ValidateAppearance(in *AppearanceInput) error {
	return v.check(in)
}

// check runs struct validation and converts failures into an AppError
// carrying the offending fields.
func (v *Validator) check(in interface{}) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	validatorErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return utils.ValidationError("Invalid payload", err)
	}

	var fields []string
	for _, fe := range validatorErrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return utils.ValidationError("Validation failed on "+strings.Join(fields, ", "), err).
		WithContext("fields", fields)
}
