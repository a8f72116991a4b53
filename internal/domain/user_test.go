package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		user, err := NewUser("Jane Doe", "jane@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "Jane Doe", user.Name)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("invalid user returns error", func(t *testing.T) {
		user, err := NewUser("", "jane@example.com")
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.Nil(t, user)
	})
}

func TestUserValidate(t *testing.T) {
	validUser := func() *User {
		u, err := NewUser("Jane Doe", "jane@example.com")
		require.NoError(t, err)
		return u
	}

	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(u *User) {},
		},
		{
			name:    "nil ID",
			mutate:  func(u *User) { u.ID = uuid.Nil },
			wantErr: ErrEmptyUserID,
		},
		{
			name:    "empty name",
			mutate:  func(u *User) { u.Name = "" },
			wantErr: ErrEmptyName,
		},
		{
			name:    "name too long",
			mutate:  func(u *User) { u.Name = strings.Repeat("a", MaxNameLength+1) },
			wantErr: ErrNameTooLong,
		},
		{
			name:   "multibyte name at the limit",
			mutate: func(u *User) { u.Name = strings.Repeat("é", MaxNameLength) },
		},
		{
			name:    "multibyte name over the limit",
			mutate:  func(u *User) { u.Name = strings.Repeat("é", MaxNameLength+1) },
			wantErr: ErrNameTooLong,
		},
		{
			name:    "empty email",
			mutate:  func(u *User) { u.Email = "" },
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "email too long",
			mutate:  func(u *User) { u.Email = strings.Repeat("a", MaxEmailLength) + "@example.com" },
			wantErr: ErrEmailTooLong,
		},
		{
			name:    "email missing at sign",
			mutate:  func(u *User) { u.Email = "janeexample.com" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email missing domain dot",
			mutate:  func(u *User) { u.Email = "jane@example" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email dot at domain end",
			mutate:  func(u *User) { u.Email = "jane@example." },
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := validUser()
			tt.mutate(user)

			err := user.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
