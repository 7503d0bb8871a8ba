package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studioadmin/models"
	"studioadmin/storage"
)

// verifyPurpose marks a token as an email verification link, keeping it
// unusable as a session token.
const verifyPurpose = "email-verify"

// verifyClaims is the payload of an email verification link token.
type verifyClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// LocalProvider is the built-in identity provider, backed by the admin
// store. Verification links are signed short-lived tokens pointing at the
// dashboard's verify endpoint.
type LocalProvider struct {
	admins       *storage.AdminStore
	secret       string
	linkTTL      time.Duration
	dashboardURL string
}

// NewLocalProvider creates the provider. dashboardURL is the base the
// verification link is appended to, e.g. "https://studio.example.com".
func NewLocalProvider(admins *storage.AdminStore, secret string, linkTTL time.Duration, dashboardURL string) *LocalProvider {
	return &LocalProvider{
		admins:       admins,
		secret:       secret,
		linkTTL:      linkTTL,
		dashboardURL: dashboardURL,
	}
}

// UpdateUserEmail changes the auth record's email and clears its verified
// flag.
func (p *LocalProvider) UpdateUserEmail(uid, email string) error {
	return p.admins.UpdateEmail(uid, email)
}

// GenerateEmailVerificationLink returns a link that, when visited, marks
// the address verified.
func (p *LocalProvider) GenerateEmailVerificationLink(email string) (string, error) {
	claims := verifyClaims{
		Email:   email,
		Purpose: verifyPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.linkTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.secret))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/verify-email?token=%s", p.dashboardURL, token), nil
}

// GetUser returns the auth record for an admin identity.
func (p *LocalProvider) GetUser(uid string) (*models.AdminUser, error) {
	return p.admins.GetAdmin(uid)
}

// ConfirmEmailVerification validates a verification token and marks the
// matching admin's email verified.
func (p *LocalProvider) ConfirmEmailVerification(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &verifyClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.secret), nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*verifyClaims)
	if !ok || !token.Valid || claims.Purpose != verifyPurpose {
		return fmt.Errorf("invalid verification token")
	}

	admin, err := p.admins.GetAdminByEmail(claims.Email)
	if err != nil {
		return err
	}
	return p.admins.MarkEmailVerified(admin.ID)
}
