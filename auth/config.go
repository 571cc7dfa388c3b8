package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KOMKZ/cpipeline/settings"
)

// Config authentication configuration
type Config struct {
	BcryptCost   int
	Policy       PasswordPolicy
	LoginAttempt LoginAttemptConfig
}

// PasswordPolicy password policy
type PasswordPolicy struct {
	MinLength          int
	MaxLength          int // bcrypt ignores input beyond 72 bytes
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool

	Blacklist []string
}

// LoginAttemptConfig login attempt limiting
type LoginAttemptConfig struct {
	Enabled         bool
	MaxAttempts     int
	LockoutDuration time.Duration
}

// ConfigFromSettings takes the bcrypt cost from SECURITY_BCRYPT_ROUNDS
func ConfigFromSettings(s *settings.Settings) Config {
	cfg := Config{
		BcryptCost:   s.BcryptRounds,
		LoginAttempt: LoginAttemptConfig{Enabled: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields
func (c *Config) ApplyDefaults() {
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Policy.MinLength == 0 {
		c.Policy.MinLength = 8
	}
	if c.Policy.MaxLength == 0 {
		c.Policy.MaxLength = 72
	}
	if c.LoginAttempt.Enabled {
		if c.LoginAttempt.MaxAttempts == 0 {
			c.LoginAttempt.MaxAttempts = 5
		}
		if c.LoginAttempt.LockoutDuration == 0 {
			c.LoginAttempt.LockoutDuration = 30 * time.Minute
		}
	}
}

// Validate checks ranges after defaults are applied
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(4), validation.Max(31)),
		validation.Field(&c.Policy),
		validation.Field(&c.LoginAttempt),
	)
}

func (p PasswordPolicy) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.MinLength, validation.Required, validation.Min(1), validation.Max(p.MaxLength)),
		validation.Field(&p.MaxLength, validation.Required, validation.Max(72)),
	)
}

func (l LoginAttemptConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.MaxAttempts, validation.When(l.Enabled, validation.Required, validation.Min(1))),
		validation.Field(&l.LockoutDuration, validation.When(l.Enabled, validation.Required)),
	)
}
