package models

import "time"

// Theme values accepted for appearance settings
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Density values accepted for appearance settings
const (
	DensityComfortable = "comfortable"
	DensityCompact     = "compact"
)

// ProfileSettings holds the admin's public-facing profile
type ProfileSettings struct {
	DisplayName       string `json:"display_name"`
	Email             string `json:"email"`
	Bio               string `json:"bio"`
	Timezone          string `json:"timezone"`
	AvatarURL         string `json:"avatar_url"`
	AvatarStoragePath string `json:"avatar_storage_path,omitempty"`
}

// ChannelToggle is a single on/off notification channel
type ChannelToggle struct {
	Enabled bool `json:"enabled"`
}

// NotificationEvents selects which event kinds produce notifications
type NotificationEvents struct {
	Comments     bool `json:"comments"`
	Applications bool `json:"applications"`
	System       bool `json:"system"`
}

// NotificationSettings holds per-channel and per-event notification flags
type NotificationSettings struct {
	Email  ChannelToggle      `json:"email"`
	InApp  ChannelToggle      `json:"in_app"`
	Events NotificationEvents `json:"events"`
}

// AppearanceSettings holds dashboard look-and-feel preferences
type AppearanceSettings struct {
	Theme         string `json:"theme"`
	Accent        string `json:"accent"`
	Density       string `json:"density"`
	ReducedMotion bool   `json:"reduced_motion"`
}

// UserSettings is the per-admin settings document. Exactly one exists per
// admin identity once materialized; sections are merged independently.
type UserSettings struct {
	AdminID       string               `json:"admin_id"`
	Profile       ProfileSettings      `json:"profile"`
	Notifications NotificationSettings `json:"notifications"`
	Appearance    AppearanceSettings   `json:"appearance"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SettingsPatch is a partial update: nil sections are left untouched.
type SettingsPatch struct {
	Profile       *ProfileSettings      `json:"profile,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	Appearance    *AppearanceSettings   `json:"appearance,omitempty"`
}

// DefaultAppearance returns the appearance used for new documents and for
// the reset operation.
func DefaultAppearance() AppearanceSettings {
	return AppearanceSettings{
		Theme:         ThemeSystem,
		Accent:        "#a78bfa",
		Density:       DensityComfortable,
		ReducedMotion: false,
	}
}

// DefaultSettings returns a fully-populated document for a new admin.
func DefaultSettings(adminID string) *UserSettings {
	now := time.Now()
	return &UserSettings{
		AdminID: adminID,
		Profile: ProfileSettings{
			DisplayName: "Admin",
			Timezone:    "UTC",
		},
		Notifications: NotificationSettings{
			Email:  ChannelToggle{Enabled: true},
			InApp:  ChannelToggle{Enabled: true},
			Events: NotificationEvents{
				Comments:     true,
				Applications: true,
				System:       true,
			},
		},
		Appearance: DefaultAppearance(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply merges a patch into the document, section by section.
func (s *UserSettings) Apply(patch *SettingsPatch) {
	if patch == nil {
		return
	}
	if patch.Profile != nil {
		s.Profile = *patch.Profile
	}
	if patch.Notifications != nil {
		s.Notifications = *patch.Notifications
	}
	if patch.Appearance != nil {
		s.Appearance = *patch.Appearance
	}
	s.UpdatedAt = time.Now()
}

// Clone returns a deep copy; the document has no reference-typed fields, so
// a value copy is sufficient.
func (s *UserSettings) Clone() *UserSettings {
	c := *s
	return &c
}
