package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordTooShort = errors.New("password too short")
)

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Создает профиль пользователя; учетные данные живут отдельно (identities)
func NewUser(email, displayName string, now time.Time, opts ...UserOption) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	u := &User{
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(u)
	}

	return u, nil
}

// Options конструктора
type UserOption func(*User)

func WithAdmin(isAdmin bool) UserOption {
	return func(u *User) { u.IsAdmin = isAdmin }
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
