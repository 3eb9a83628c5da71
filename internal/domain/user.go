// Package domain contains entity types without logic, just meta-data
// and field-level validation.
package domain

import "errors"

const (
	MaxUsernameLen    = 36
	MaxDisplayNameLen = 64
)

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrDisplayNameLong = errors.New("display name too long")
)

// User is an identity record. Accounts are created at signup, which
// lives outside this service; the core only reads them.
type User struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName string `json:"displayName" gorm:"not null"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Bio         string `json:"bio,omitempty"`
	IsOnline    bool   `json:"isOnline"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username, displayName string) (*User, error) {
	if username == "" {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameLong
	}
	if displayName == "" {
		displayName = username
	}
	return &User{Username: username, DisplayName: displayName}, nil
}
