package settings

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioadmin/models"
	"studioadmin/storage"
	"studioadmin/utils"
	"studioadmin/validation"
)

// fakeProvider records identity-provider calls and can be made to fail.
type fakeProvider struct {
	mu          sync.Mutex
	emailCalls  int
	linkCalls   int
	lastEmail   string
	failUpdates bool
	user        *models.AdminUser
}

func (f *fakeProvider) UpdateUserEmail(uid, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates {
		return errors.New("provider down")
	}
	f.emailCalls++
	f.lastEmail = email
	return nil
}

func (f *fakeProvider) GenerateEmailVerificationLink(email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls++
	return "https://studio.example.com/verify-email?token=stub", nil
}

func (f *fakeProvider) GetUser(uid string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, errors.New("no user")
	}
	return f.user, nil
}

type serviceOptions struct {
	cooldown time.Duration
	tokenTTL time.Duration
}

func newTestService(t *testing.T, opts serviceOptions) (*Service, *fakeProvider, *storage.SettingsStore) {
	t.Helper()

	if opts.cooldown == 0 {
		opts.cooldown = time.Minute
	}
	if opts.tokenTTL == 0 {
		opts.tokenTTL = 5 * time.Minute
	}

	db, err := storage.InitDB(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewSettingsStore(db)
	provider := &fakeProvider{}

	tokens := NewRollbackStore(opts.tokenTTL, time.Minute)
	t.Cleanup(tokens.Close)

	svc := NewService(store, provider, validation.New(), tokens,
		NewCooldownGate(opts.cooldown), nil, nil, utils.Log)
	return svc, provider, store
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestLoadSettingsMaterializesDefaults(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	view, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)

	s := view.Settings
	require.NotNil(t, s)
	assert.Equal(t, "admin-1", s.AdminID)
	assert.Equal(t, "Admin", s.Profile.DisplayName)
	assert.Equal(t, "UTC", s.Profile.Timezone)
	assert.True(t, s.Notifications.Email.Enabled)
	assert.True(t, s.Notifications.InApp.Enabled)
	assert.True(t, s.Notifications.Events.Comments)
	assert.True(t, s.Notifications.Events.Applications)
	assert.True(t, s.Notifications.Events.System)
	assert.Equal(t, models.ThemeSystem, s.Appearance.Theme)
	assert.Equal(t, models.DensityComfortable, s.Appearance.Density)
	assert.NotEmpty(t, s.Appearance.Accent)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestLoadSettingsRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	_, err := svc.LoadSettings("")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 401))
}

func TestLoadSettingsVerifiedFlagUnknownOnProviderFailure(t *testing.T) {
	svc, provider, _ := newTestService(t, serviceOptions{})

	view, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)
	assert.Nil(t, view.EmailVerified)

	provider.user = &models.AdminUser{ID: "admin-1", EmailVerified: true}
	view, err = svc.LoadSettings("admin-1")
	require.NoError(t, err)
	require.NotNil(t, view.EmailVerified)
	assert.True(t, *view.EmailVerified)
}

func TestUpdateProfileRollbackRestoresPriorDocument(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	before, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)

	result, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Bio:         "Editor in chief",
		Timezone:    "Asia/Tokyo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maya", result.Settings.Profile.DisplayName)
	assert.Equal(t, "Asia/Tokyo", result.Settings.Profile.Timezone)
	require.NotEmpty(t, result.RollbackToken)

	restored, err := svc.Rollback("admin-1", result.RollbackToken)
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, before.Settings), mustJSON(t, restored))

	after, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, before.Settings), mustJSON(t, after.Settings))
}

func TestUpdateProfilePreservesEmail(t *testing.T) {
	svc, provider, _ := newTestService(t, serviceOptions{})

	_, err := svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "maya@studio.dev"})
	require.NoError(t, err)
	require.Equal(t, 1, provider.emailCalls)

	result, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Timezone:    "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, "maya@studio.dev", result.Settings.Profile.Email)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	_, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "",
		Timezone:    "UTC",
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))

	_, err = svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Timezone:    "Not/AZone",
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))
}

func TestChangeEmailCooldown(t *testing.T) {
	svc, provider, store := newTestService(t, serviceOptions{cooldown: time.Minute})

	_, err := svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "first@studio.dev"})
	require.NoError(t, err)
	require.Equal(t, 1, provider.emailCalls)

	_, err = svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "second@studio.dev"})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 429))

	// No provider or store mutation from the rejected call
	assert.Equal(t, 1, provider.emailCalls)
	current, err := store.Read("admin-1")
	require.NoError(t, err)
	assert.Equal(t, "first@studio.dev", current.Profile.Email)
}

func TestChangeEmailAfterWindowSucceeds(t *testing.T) {
	svc, provider, _ := newTestService(t, serviceOptions{cooldown: 20 * time.Millisecond})

	_, err := svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "first@studio.dev"})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "second@studio.dev"})
	require.NoError(t, err)
	assert.Equal(t, 2, provider.emailCalls)
	assert.Equal(t, "second@studio.dev", provider.lastEmail)
}

func TestChangeEmailProviderFailure(t *testing.T) {
	svc, provider, store := newTestService(t, serviceOptions{})
	provider.failUpdates = true

	_, err := svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "new@studio.dev"})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 502))

	// Nothing persisted
	current, err := store.Read("admin-1")
	require.NoError(t, err)
	assert.Empty(t, current.Profile.Email)
}

func TestSendEmailVerificationCooldownIsIndependent(t *testing.T) {
	svc, provider, _ := newTestService(t, serviceOptions{cooldown: time.Minute})

	// Email-change cooldown active; verification still allowed
	_, err := svc.ChangeEmail("admin-1", &validation.EmailChangeInput{NewEmail: "new@studio.dev"})
	require.NoError(t, err)

	link, err := svc.SendEmailVerification("admin-1", "new@studio.dev")
	require.NoError(t, err)
	assert.NotEmpty(t, link)
	assert.Equal(t, 1, provider.linkCalls)

	_, err = svc.SendEmailVerification("admin-1", "new@studio.dev")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 429))
	assert.Equal(t, 1, provider.linkCalls)
}

func TestUpdateNotificationsRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	before, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)
	previousNotifications := before.Settings.Notifications

	input := models.NotificationSettings{
		Email:  models.ChannelToggle{Enabled: false},
		InApp:  models.ChannelToggle{Enabled: true},
		Events: models.NotificationEvents{Comments: true, Applications: false, System: true},
	}

	result, err := svc.UpdateNotifications("admin-1", &input)
	require.NoError(t, err)
	assert.Equal(t, input, result.Settings.Notifications)

	restored, err := svc.Rollback("admin-1", result.RollbackToken)
	require.NoError(t, err)
	assert.Equal(t, previousNotifications, restored.Notifications)
}

func TestUpdateAppearanceContrastGate(t *testing.T) {
	svc, _, store := newTestService(t, serviceOptions{})

	before, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)

	// Near-background color: ratio far below 4.5
	_, err = svc.UpdateAppearance("admin-1", &validation.AppearanceInput{
		Theme:   models.ThemeDark,
		Accent:  "#1e293b",
		Density: models.DensityCompact,
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))

	// Stored appearance unchanged
	current, err := store.Read("admin-1")
	require.NoError(t, err)
	assert.Equal(t, before.Settings.Appearance, current.Appearance)

	// High-contrast accent passes
	result, err := svc.UpdateAppearance("admin-1", &validation.AppearanceInput{
		Theme:   models.ThemeDark,
		Accent:  "#ffffff",
		Density: models.DensityCompact,
	})
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", result.Settings.Appearance.Accent)
	assert.Equal(t, models.ThemeDark, result.Settings.Appearance.Theme)
}

func TestUpdateAppearanceShapeValidation(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	_, err := svc.UpdateAppearance("admin-1", &validation.AppearanceInput{
		Theme:   "sepia",
		Accent:  "#ffffff",
		Density: models.DensityCompact,
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))

	_, err = svc.UpdateAppearance("admin-1", &validation.AppearanceInput{
		Theme:   models.ThemeDark,
		Accent:  "white",
		Density: models.DensityCompact,
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))
}

func TestResetAppearance(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	_, err := svc.UpdateAppearance("admin-1", &validation.AppearanceInput{
		Theme:   models.ThemeDark,
		Accent:  "#ffffff",
		Density: models.DensityCompact,
	})
	require.NoError(t, err)

	result, err := svc.ResetAppearance("admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAppearance(), result.Settings.Appearance)
	require.NotEmpty(t, result.RollbackToken)

	restored, err := svc.Rollback("admin-1", result.RollbackToken)
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", restored.Appearance.Accent)
}

func TestRollbackIsSingleUse(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	result, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Timezone:    "UTC",
	})
	require.NoError(t, err)

	_, err = svc.Rollback("admin-1", result.RollbackToken)
	require.NoError(t, err)

	_, err = svc.Rollback("admin-1", result.RollbackToken)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 410))
}

func TestRollbackExpiredToken(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{tokenTTL: 20 * time.Millisecond})

	result, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Timezone:    "UTC",
	})
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = svc.Rollback("admin-1", result.RollbackToken)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 410))
}

func TestRollbackForeignToken(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	result, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
		DisplayName: "Maya",
		Timezone:    "UTC",
	})
	require.NoError(t, err)

	_, err = svc.Rollback("admin-2", result.RollbackToken)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 410))
}

func TestConcurrentProfileUpdates(t *testing.T) {
	svc, _, store := newTestService(t, serviceOptions{})

	_, err := svc.LoadSettings("admin-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*UpdateResult, 2)
	names := []string{"First", "Second"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.UpdateProfile("admin-1", &validation.ProfileInput{
				DisplayName: names[i],
				Timezone:    "UTC",
			})
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])

	// Last write wins at the store
	current, err := store.Read("admin-1")
	require.NoError(t, err)
	assert.Contains(t, names, current.Profile.DisplayName)

	// Both calls received valid, usable tokens
	_, err = svc.Rollback("admin-1", results[0].RollbackToken)
	require.NoError(t, err)
	_, err = svc.Rollback("admin-1", results[1].RollbackToken)
	require.NoError(t, err)
}

func TestSendTestNotification(t *testing.T) {
	svc, _, _ := newTestService(t, serviceOptions{})

	ack, err := svc.SendTestNotification("admin-1", ChannelEmail)
	require.NoError(t, err)
	assert.NotEmpty(t, ack)

	ack, err = svc.SendTestNotification("admin-1", ChannelInApp)
	require.NoError(t, err)
	assert.NotEmpty(t, ack)

	_, err = svc.SendTestNotification("admin-1", "pager")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 422))
}

func TestStoreUnavailableSurfaces(t *testing.T) {
	provider := &fakeProvider{}
	tokens := NewRollbackStore(5*time.Minute, time.Minute)
	t.Cleanup(tokens.Close)

	svc := NewService(storage.NewSettingsStore(nil), provider, validation.New(),
		tokens, NewCooldownGate(time.Minute), nil, nil, utils.Log)

	_, err := svc.LoadSettings("admin-1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, 503))
}
