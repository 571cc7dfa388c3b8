package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashPassword(t *testing.T) {
	service := NewPasswordService(PasswordPolicy{MinLength: 8, MaxLength: 72}, bcrypt.MinCost)

	hash, err := service.HashPassword("TestPassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, service.CheckPassword("TestPassword123", hash))
	assert.False(t, service.CheckPassword("WrongPassword", hash))
}

func TestPasswordService_HashPasswordTooLong(t *testing.T) {
	service := NewPasswordService(PasswordPolicy{}, bcrypt.MinCost)

	_, err := service.HashPassword(strings.Repeat("a", 100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPasswordHash))
}

func TestPasswordService_NeedsRehash(t *testing.T) {
	low := NewPasswordService(PasswordPolicy{}, bcrypt.MinCost)
	high := NewPasswordService(PasswordPolicy{}, bcrypt.MinCost+1)

	hash, err := low.HashPassword("password")
	require.NoError(t, err)

	assert.False(t, low.NeedsRehash(hash))
	assert.True(t, high.NeedsRehash(hash))
	assert.True(t, low.NeedsRehash("not-a-hash"))
}

func TestPasswordService_ValidatePassword(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:          8,
		MaxLength:          20,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
		Blacklist:          []string{"password"},
	}
	service := NewPasswordService(policy, bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Str0ng!Pass", nil},
		{"too short", "Ab1!", ErrPasswordTooShort},
		{"too long", "Abcdefghij1!abcdefghij", ErrPasswordTooLong},
		{"missing uppercase", "str0ng!pass", ErrPasswordRequireUppercase},
		{"missing lowercase", "STR0NG!PASS", ErrPasswordRequireLowercase},
		{"missing digit", "Strong!Pass", ErrPasswordRequireDigit},
		{"missing special", "Str0ngPass1", ErrPasswordRequireSpecial},
		{"blacklisted", "MyPassword1!", ErrPasswordInBlacklist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestPasswordService_Accessors(t *testing.T) {
	policy := PasswordPolicy{MinLength: 10}
	service := NewPasswordService(policy, 11)
	assert.Equal(t, 11, service.Cost())
	assert.Equal(t, policy, service.GetPolicy())
}
