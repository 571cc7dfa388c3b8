package jwt

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KOMKZ/cpipeline/settings"
)

// Supported HMAC algorithms
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
)

// Config token signing configuration
type Config struct {
	Algorithm string
	Secret    string

	AccessToken  AccessTokenConfig
	RefreshToken RefreshTokenConfig

	// Blacklist enables RevokeToken / RevokeUserTokens
	Blacklist bool

	// ClockSkew is the leeway applied to exp/nbf/iat checks
	ClockSkew time.Duration
}

// AccessTokenConfig access token settings
type AccessTokenConfig struct {
	TTL      time.Duration
	Issuer   string
	Audience string
}

// RefreshTokenConfig refresh token settings
type RefreshTokenConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ConfigFromSettings signs with SECRET_KEY and takes both lifetimes from the
// expiry settings. The project name becomes the issuer.
func ConfigFromSettings(s *settings.Settings) Config {
	cfg := Config{
		Algorithm: AlgorithmHS256,
		Secret:    s.SecretKey,
		AccessToken: AccessTokenConfig{
			TTL:    s.AccessTokenTTL(),
			Issuer: s.ProjectName,
		},
		RefreshToken: RefreshTokenConfig{
			Enabled: true,
			TTL:     s.RefreshTokenTTL(),
		},
		Blacklist: true,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmHS256
	}
	if c.AccessToken.TTL == 0 {
		c.AccessToken.TTL = 2 * time.Hour
	}
	if c.AccessToken.Issuer == "" {
		c.AccessToken.Issuer = "cpipeline"
	}
	if c.RefreshToken.TTL == 0 {
		c.RefreshToken.TTL = 7 * 24 * time.Hour
	}
	if c.ClockSkew == 0 {
		c.ClockSkew = 30 * time.Second
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Secret == "" {
		return ErrSecretEmpty
	}
	if err := validation.Validate(c.Algorithm, validation.Required, validation.In(AlgorithmHS256, AlgorithmHS384, AlgorithmHS512)); err != nil {
		return ErrAlgorithmNotSupported.WithMsgf("algorithm %q is not supported", c.Algorithm)
	}
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ClockSkew, validation.Min(time.Duration(0))),
	)
	if err == nil {
		err = validation.ValidateStruct(&c.AccessToken,
			validation.Field(&c.AccessToken.TTL, validation.Required, validation.Min(time.Second)),
		)
	}
	if err == nil && c.RefreshToken.Enabled {
		err = validation.ValidateStruct(&c.RefreshToken,
			validation.Field(&c.RefreshToken.TTL, validation.Required, validation.Min(time.Second)),
		)
	}
	if err != nil {
		return ErrInvalidConfig.Wrap(err)
	}
	return nil
}
