package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the opaque unique identifier of the user, generated at
	// registration time and never reused.
	UserID string `json:"id"`

	// Email is the unique address used during authentication.
	// Matched byte-for-byte; lowering is the caller's responsibility.
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// Avatar is an optional reference to the user's avatar image.
	Avatar string `json:"avatar,omitempty"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This value MUST be a hash, never plaintext, and is never serialized.
	PasswordHash string `json:"-"`

	// IsAdmin marks accounts with administrative privileges.
	IsAdmin bool `json:"-"`

	// IsDisabled marks accounts that can no longer authenticate.
	IsDisabled bool `json:"-"`

	// Settings holds the user's recognized preference keys.
	Settings Settings `json:"settings"`

	// CreatedAt is the timestamp when the user account was created.
	// Used for auditing and lifecycle management.
	CreatedAt time.Time `json:"createdAt"`
}

// PublicView returns the subset of user fields that may cross the API
// boundary. The password hash and admin/disabled flags never leave the
// server process.
func (u User) PublicView() User {
	return User{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Settings:  u.Settings,
		CreatedAt: u.CreatedAt,
	}
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// Settings is the fixed set of recognized user preference keys.
// Modeled as a closed struct rather than an open JSON blob so the
// store's contract stays checkable.
type Settings struct {
	// Theme selects the UI color scheme (e.g. "light", "dark").
	Theme string `json:"theme,omitempty"`

	// Notifications toggles delivery of in-app notifications.
	Notifications *bool `json:"notifications,omitempty"`

	// BiometricEnabled toggles the hardware-key second factor prompt.
	BiometricEnabled *bool `json:"biometricEnabled,omitempty"`
}

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil
}

// SettingsUpdate carries the optional fields of a partial settings update.
// Only the recognized keys can be set; unknown keys are rejected at the
// transport layer by strict JSON decoding.
type SettingsUpdate struct {
	Theme            *string `json:"theme,omitempty"`
	Notifications    *bool   `json:"notifications,omitempty"`
	BiometricEnabled *bool   `json:"biometricEnabled,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (s SettingsUpdate) IsEmpty() bool {
	return s.Theme == nil && s.Notifications == nil && s.BiometricEnabled == nil
}
