package auth

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioadmin/models"
	"studioadmin/storage"
)

const testSecret = "test-secret"

func setupProvider(t *testing.T) (*LocalProvider, *storage.AdminStore) {
	t.Helper()

	db, err := storage.InitDB(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	admins := storage.NewAdminStore(db)
	provider := NewLocalProvider(admins, testSecret, time.Hour, "https://studio.example.com")
	return provider, admins
}

func TestSessionTokenRoundTrip(t *testing.T) {
	admin := &models.AdminUser{ID: "admin-1", Email: "maya@studio.dev", Role: "admin"}

	token, err := GenerateSessionToken(admin, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "maya@studio.dev", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	admin := &models.AdminUser{ID: "admin-1", Role: "admin"}

	token, err := GenerateSessionToken(admin, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "other-secret")
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	admin := &models.AdminUser{ID: "admin-1", Role: "admin"}

	token, err := GenerateSessionToken(admin, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, testSecret)
	assert.Error(t, err)
}

func TestVerificationLinkFlow(t *testing.T) {
	provider, admins := setupProvider(t)

	admin := &models.AdminUser{Email: "maya@studio.dev"}
	require.NoError(t, admins.CreateAdmin(admin, "s3cret"))

	link, err := provider.GenerateEmailVerificationLink("maya@studio.dev")
	require.NoError(t, err)
	require.Contains(t, link, "https://studio.example.com/verify-email?token=")

	token := strings.TrimPrefix(link, "https://studio.example.com/verify-email?token=")
	require.NoError(t, provider.ConfirmEmailVerification(token))

	got, err := admins.GetAdmin(admin.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
}

func TestVerificationRejectsSessionToken(t *testing.T) {
	provider, admins := setupProvider(t)

	admin := &models.AdminUser{Email: "maya@studio.dev", Role: "admin"}
	require.NoError(t, admins.CreateAdmin(admin, "s3cret"))

	// A session token signed with the same secret must not verify an email
	session, err := GenerateSessionToken(admin, testSecret, time.Hour)
	require.NoError(t, err)

	assert.Error(t, provider.ConfirmEmailVerification(session))
}

func TestUpdateUserEmail(t *testing.T) {
	provider, admins := setupProvider(t)

	admin := &models.AdminUser{Email: "maya@studio.dev"}
	require.NoError(t, admins.CreateAdmin(admin, "s3cret"))

	require.NoError(t, provider.UpdateUserEmail(admin.ID, "new@studio.dev"))

	got, err := provider.GetUser(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@studio.dev", got.Email)
	assert.False(t, got.EmailVerified)
}
