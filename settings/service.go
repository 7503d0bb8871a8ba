package settings

import (
	"errors"

	"studioadmin/models"
	"studioadmin/storage"
	"studioadmin/utils"
	"studioadmin/validation"
)

// IdentityProvider is the auth-record collaborator. Failures surface to
// callers as AuthUnavailable.
type IdentityProvider interface {
	UpdateUserEmail(uid, email string) error
	GenerateEmailVerificationLink(email string) (string, error)
	GetUser(uid string) (*models.AdminUser, error)
}

// Revalidator tells the rendering layer a path's cached output is stale.
// Calls are fire-and-forget; failures never propagate.
type Revalidator interface {
	Revalidate(path string)
}

// Notifier publishes in-app events to connected dashboard sessions.
type Notifier interface {
	Publish(adminID, eventType, message string)
}

// Test notification channels
const (
	ChannelEmail = "email"
	ChannelInApp = "in_app"
)

// settingsPath is the dashboard path whose cache is refreshed after every
// successful mutation.
const settingsPath = "/admin/settings"

// UpdateResult pairs the persisted document with the undo token for the
// mutation that produced it.
type UpdateResult struct {
	Settings      *models.UserSettings `json:"settings"`
	RollbackToken string               `json:"rollback_token"`
}

// SettingsView is the read model: the document plus the best-effort
// email-verified flag (nil when the provider could not be reached).
type SettingsView struct {
	Settings      *models.UserSettings `json:"settings"`
	EmailVerified *bool                `json:"email_verified"`
}

// Service is the only entry point dashboard code may use to read or mutate
// admin settings. It owns the rollback token store and cooldown gate;
// construct one per process and inject it into handlers.
type Service struct {
	store     *storage.SettingsStore
	provider  IdentityProvider
	validator *validation.Validator
	tokens    *RollbackStore
	cooldowns *CooldownGate

	revalidator Revalidator
	notifier    Notifier
	logger      *utils.Logger
}

// NewService wires the action service. revalidator and notifier may be nil;
// the corresponding signals are then skipped.
func NewService(
	store *storage.SettingsStore,
	provider IdentityProvider,
	validator *validation.Validator,
	tokens *RollbackStore,
	cooldowns *CooldownGate,
	revalidator Revalidator,
	notifier Notifier,
	logger *utils.Logger,
) *Service {
	return &Service{
		store:       store,
		provider:    provider,
		validator:   validator,
		tokens:      tokens,
		cooldowns:   cooldowns,
		revalidator: revalidator,
		notifier:    notifier,
		logger:      logger,
	}
}

// requireAdmin rejects calls that arrive without a resolved admin identity.
func (s *Service) requireAdmin(adminID string) error {
	if adminID == "" {
		return utils.UnauthorizedError("Admin authentication required", nil)
	}
	return nil
}

// LoadSettings returns the current document, materializing defaults on
// first access, plus the best-effort email-verified flag for display.
func (s *Service) LoadSettings(adminID string) (*SettingsView, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	current, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	view := &SettingsView{Settings: current}

	// Display-only; a provider failure falls back to "unknown" rather than
	// blocking settings rendering.
	if user, err := s.provider.GetUser(adminID); err == nil {
		verified := user.EmailVerified
		view.EmailVerified = &verified
	} else {
		s.logger.Debug("Email verification lookup failed for %s: %v", adminID, err)
	}

	return view, nil
}

// UpdateProfile validates and persists profile fields. The stored email is
// preserved: changing it here would desync the identity provider.
func (s *Service) UpdateProfile(adminID string, in *validation.ProfileInput) (*UpdateResult, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateProfile(in); err != nil {
		return nil, err
	}

	previous, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	profile := previous.Profile
	profile.DisplayName = in.DisplayName
	profile.Bio = in.Bio
	profile.Timezone = in.Timezone
	profile.AvatarURL = in.AvatarURL
	profile.AvatarStoragePath = in.AvatarStoragePath

	return s.persist(adminID, previous, &models.SettingsPatch{Profile: &profile})
}

// ChangeEmail updates the identity provider's email record and then the
// settings document. The provider is updated first; if settings persistence
// fails afterwards the two stores disagree until the next successful write,
// and that condition is logged distinctly.
func (s *Service) ChangeEmail(adminID string, in *validation.EmailChangeInput) (*UpdateResult, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEmail(in.NewEmail); err != nil {
		return nil, err
	}

	if remaining := s.cooldowns.Remaining(adminID, CooldownEmailChange); remaining > 0 {
		return nil, utils.RateLimitedError("Email was changed recently; try again shortly").
			WithContext("retry_after_seconds", int(remaining.Seconds())+1)
	}

	previous, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	if err := s.provider.UpdateUserEmail(adminID, in.NewEmail); err != nil {
		return nil, utils.AuthUnavailableError(err)
	}

	s.cooldowns.Stamp(adminID, CooldownEmailChange)

	profile := previous.Profile
	profile.Email = in.NewEmail

	result, err := s.persist(adminID, previous, &models.SettingsPatch{Profile: &profile})
	if err != nil {
		// Provider email is already changed; settings now lag behind it.
		s.logger.Error("Email desync for %s: provider updated to %s but settings write failed: %v",
			adminID, in.NewEmail, err)
		return nil, err
	}
	return result, nil
}

// SendEmailVerification generates a verification link for the given
// address. No settings mutation, no rollback token; its cooldown is
// independent of the email-change cooldown.
func (s *Service) SendEmailVerification(adminID, email string) (string, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return "", err
	}
	if err := s.validator.ValidateEmail(email); err != nil {
		return "", err
	}

	if remaining := s.cooldowns.Remaining(adminID, CooldownVerificationSend); remaining > 0 {
		return "", utils.RateLimitedError("Verification was sent recently; try again shortly").
			WithContext("retry_after_seconds", int(remaining.Seconds())+1)
	}

	link, err := s.provider.GenerateEmailVerificationLink(email)
	if err != nil {
		return "", utils.AuthUnavailableError(err)
	}

	s.cooldowns.Stamp(adminID, CooldownVerificationSend)
	return link, nil
}

// UpdateNotifications validates and persists notification preferences.
func (s *Service) UpdateNotifications(adminID string, in *models.NotificationSettings) (*UpdateResult, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateNotifications(in); err != nil {
		return nil, err
	}

	previous, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	return s.persist(adminID, previous, &models.SettingsPatch{Notifications: in})
}

// SendTestNotification acknowledges a test request for a channel. Nothing
// is persisted; in-app tests are pushed to connected dashboard sessions.
func (s *Service) SendTestNotification(adminID, channel string) (string, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return "", err
	}

	switch channel {
	case ChannelEmail:
		return "Test email notification queued", nil
	case ChannelInApp:
		if s.notifier != nil {
			s.notifier.Publish(adminID, "test", "This is a test notification")
		}
		return "Test in-app notification sent", nil
	default:
		return "", utils.ValidationError("Unknown notification channel", nil).
			WithContext("fields", []string{"channel"})
	}
}

// UpdateAppearance validates the payload, gates the accent color on the
// WCAG AA contrast check, then persists.
func (s *Service) UpdateAppearance(adminID string, in *validation.AppearanceInput) (*UpdateResult, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAppearance(in); err != nil {
		return nil, err
	}

	contrast, err := validation.CheckContrast(in.Accent)
	if err != nil {
		return nil, utils.ValidationError("Invalid accent color", err).
			WithContext("fields", []string{"accent"})
	}
	if !contrast.MeetsAA {
		return nil, utils.ContrastViolationError(contrast.Ratio)
	}

	previous, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	appearance := models.AppearanceSettings{
		Theme:         in.Theme,
		Accent:        in.Accent,
		Density:       in.Density,
		ReducedMotion: in.ReducedMotion,
	}
	return s.persist(adminID, previous, &models.SettingsPatch{Appearance: &appearance})
}

// ResetAppearance restores the default appearance.
func (s *Service) ResetAppearance(adminID string) (*UpdateResult, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	previous, err := s.loadOrInit(adminID)
	if err != nil {
		return nil, err
	}

	appearance := models.DefaultAppearance()
	return s.persist(adminID, previous, &models.SettingsPatch{Appearance: &appearance})
}

// Rollback restores the snapshot captured before one mutation. Tokens are
// single-use: a second call with the same token fails with RollbackInvalid.
func (s *Service) Rollback(adminID, token string) (*models.UserSettings, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	snapshot, err := s.tokens.Consume(token, adminID)
	if err != nil {
		return nil, utils.RollbackInvalidError("Undo is no longer available for this change")
	}

	if err := s.store.Restore(adminID, snapshot); err != nil {
		s.logger.Error("Rollback restore failed for %s: %v", adminID, err)
		return nil, utils.StoreUnavailableError(err)
	}

	s.signalRevalidate()
	return snapshot, nil
}

// loadOrInit reads the document, materializing defaults by writing an
// empty patch on first access.
func (s *Service) loadOrInit(adminID string) (*models.UserSettings, error) {
	current, err := s.store.Read(adminID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, storage.ErrSettingsNotFound) {
		return nil, utils.StoreUnavailableError(err)
	}

	if _, err := s.store.Write(adminID, &models.SettingsPatch{}); err != nil {
		return nil, utils.StoreUnavailableError(err)
	}
	current, err = s.store.Read(adminID)
	if err != nil {
		return nil, utils.StoreUnavailableError(err)
	}
	return current, nil
}

// persist writes the patch, captures the prior document in a rollback
// token and signals the rendering layer.
func (s *Service) persist(adminID string, previous *models.UserSettings, patch *models.SettingsPatch) (*UpdateResult, error) {
	merged, err := s.store.Write(adminID, patch)
	if err != nil {
		return nil, utils.StoreUnavailableError(err)
	}

	token := s.tokens.Create(adminID, previous)
	s.signalRevalidate()

	return &UpdateResult{
		Settings:      merged,
		RollbackToken: token,
	}, nil
}

func (s *Service) signalRevalidate() {
	if s.revalidator != nil {
		s.revalidator.Revalidate(settingsPath)
	}
}
