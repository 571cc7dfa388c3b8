package settings

import "strings"

// Setting names as read from the environment and the .env file
const (
	KeySecretKey                 = "SECRET_KEY"
	KeyEnvironment               = "ENVIRONMENT"
	KeyBcryptRounds              = "SECURITY_BCRYPT_ROUNDS"
	KeyAccessTokenExpireMinutes  = "ACCESS_TOKEN_EXPIRE_MINUTES"
	KeyRefreshTokenExpireMinutes = "REFRESH_TOKEN_EXPIRE_MINUTES"
	KeyBackendCORSOrigins        = "BACKEND_CORS_ORIGINS"
	KeyAllowedHosts              = "ALLOWED_HOSTS"
	KeyProjectName               = "PROJECT_NAME"
	KeyVersion                   = "VERSION"
	KeyDescription               = "DESCRIPTION"

	KeyDefaultDatabaseHostname = "DEFAULT_DATABASE_HOSTNAME"
	KeyDefaultDatabaseUser     = "DEFAULT_DATABASE_USER"
	KeyDefaultDatabasePassword = "DEFAULT_DATABASE_PASSWORD"
	KeyDefaultDatabasePort     = "DEFAULT_DATABASE_PORT"
	KeyDefaultDatabaseDB       = "DEFAULT_DATABASE_DB"
	KeyDefaultDatabaseURI      = "DEFAULT_SQLALCHEMY_DATABASE_URI"

	KeyTestDatabaseHostname = "TEST_DATABASE_HOSTNAME"
	KeyTestDatabaseUser     = "TEST_DATABASE_USER"
	KeyTestDatabasePassword = "TEST_DATABASE_PASSWORD"
	KeyTestDatabasePort     = "TEST_DATABASE_PORT"
	KeyTestDatabaseDB       = "TEST_DATABASE_DB"
	KeyTestDatabaseURI      = "TEST_SQLALCHEMY_DATABASE_URI"

	KeyFirstSuperuserEmail    = "FIRST_SUPERUSER_EMAIL"
	KeyFirstSuperuserPassword = "FIRST_SUPERUSER_PASSWORD"
)

const sourceDefault = "default"
const sourceDerived = "derived"

// field describes one setting: where it lives in Settings, how it is parsed
// and what it falls back to.
type field struct {
	key        string
	expected   string
	def        string
	hasDefault bool
	secret     bool
	assign     func(s *Settings, raw string) error
}

func required(key, expected string, secret bool, assign func(*Settings, string) error) field {
	return field{key: key, expected: expected, secret: secret, assign: assign}
}

func optional(key, expected, def string, assign func(*Settings, string) error) field {
	return field{key: key, expected: expected, def: def, hasDefault: true, assign: assign}
}

func str(dst func(*Settings) *string) func(*Settings, string) error {
	return func(s *Settings, raw string) error {
		*dst(s) = raw
		return nil
	}
}

// trimmed stores the value without surrounding whitespace, so the record
// holds exactly what goes into the derived URI.
func trimmed(dst func(*Settings) *string) func(*Settings, string) error {
	return func(s *Settings, raw string) error {
		*dst(s) = strings.TrimSpace(raw)
		return nil
	}
}

func integer(dst func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, raw string) error {
		v, err := parseInt(raw)
		if err != nil {
			return err
		}
		*dst(s) = v
		return nil
	}
}

// fields is the declaration order; violations are reported in this order.
var fields = []field{
	required(KeySecretKey, "string", true, str(func(s *Settings) *string { return &s.SecretKey })),
	optional(KeyEnvironment, "one of DEV, PYTEST, STG, PRD", string(EnvDev), func(s *Settings, raw string) error {
		env, err := parseEnvironment(raw)
		if err != nil {
			return err
		}
		s.Environment = env
		return nil
	}),
	optional(KeyBcryptRounds, "integer", "12", integer(func(s *Settings) *int { return &s.BcryptRounds })),
	optional(KeyAccessTokenExpireMinutes, "integer", "11520", integer(func(s *Settings) *int { return &s.AccessTokenExpireMinutes })),
	optional(KeyRefreshTokenExpireMinutes, "integer", "40320", integer(func(s *Settings) *int { return &s.RefreshTokenExpireMinutes })),
	optional(KeyBackendCORSOrigins, "JSON array of http(s) URLs", `["https://dev.xxx.com"]`, func(s *Settings, raw string) error {
		origins, err := parseURLList(raw)
		if err != nil {
			return err
		}
		s.BackendCORSOrigins = origins
		return nil
	}),
	optional(KeyAllowedHosts, "JSON array of strings", `["localhost","127.0.0.1"]`, func(s *Settings, raw string) error {
		hosts, err := parseStringList(raw)
		if err != nil {
			return err
		}
		s.AllowedHosts = hosts
		return nil
	}),
	optional(KeyProjectName, "string", "cpipeline", str(func(s *Settings) *string { return &s.ProjectName })),
	optional(KeyVersion, "string", "1.0", str(func(s *Settings) *string { return &s.Version })),
	optional(KeyDescription, "string", "Container Pipeline", str(func(s *Settings) *string { return &s.Description })),

	required(KeyDefaultDatabaseHostname, "string", false, trimmed(func(s *Settings) *string { return &s.DefaultDatabase.Hostname })),
	required(KeyDefaultDatabaseUser, "string", false, str(func(s *Settings) *string { return &s.DefaultDatabase.User })),
	required(KeyDefaultDatabasePassword, "string", true, str(func(s *Settings) *string { return &s.DefaultDatabase.Password })),
	required(KeyDefaultDatabasePort, "string", false, trimmed(func(s *Settings) *string { return &s.DefaultDatabase.Port })),
	required(KeyDefaultDatabaseDB, "string", false, str(func(s *Settings) *string { return &s.DefaultDatabase.DB })),

	optional(KeyTestDatabaseHostname, "string", "postgres", trimmed(func(s *Settings) *string { return &s.TestDatabase.Hostname })),
	optional(KeyTestDatabaseUser, "string", "postgres", str(func(s *Settings) *string { return &s.TestDatabase.User })),
	withSecret(optional(KeyTestDatabasePassword, "string", "postgres", str(func(s *Settings) *string { return &s.TestDatabase.Password }))),
	optional(KeyTestDatabasePort, "string", "5432", trimmed(func(s *Settings) *string { return &s.TestDatabase.Port })),
	optional(KeyTestDatabaseDB, "string", "postgres", str(func(s *Settings) *string { return &s.TestDatabase.DB })),

	required(KeyFirstSuperuserEmail, "email address", false, func(s *Settings, raw string) error {
		email, err := parseEmail(raw)
		if err != nil {
			return err
		}
		s.FirstSuperuserEmail = email
		return nil
	}),
	required(KeyFirstSuperuserPassword, "string", true, str(func(s *Settings) *string { return &s.FirstSuperuserPassword })),
}

func withSecret(f field) field {
	f.secret = true
	return f
}

// derivedURI ties a derived URI setting to its component settings
type derivedURI struct {
	key        string
	components []string
	db         func(*Settings) DatabaseConfig
	dst        func(*Settings) *string
}

var derivedURIs = []derivedURI{
	{
		key: KeyDefaultDatabaseURI,
		components: []string{KeyDefaultDatabaseHostname, KeyDefaultDatabaseUser, KeyDefaultDatabasePassword,
			KeyDefaultDatabasePort, KeyDefaultDatabaseDB},
		db:  func(s *Settings) DatabaseConfig { return s.DefaultDatabase },
		dst: func(s *Settings) *string { return &s.DefaultDatabaseURI },
	},
	{
		key: KeyTestDatabaseURI,
		components: []string{KeyTestDatabaseHostname, KeyTestDatabaseUser, KeyTestDatabasePassword,
			KeyTestDatabasePort, KeyTestDatabaseDB},
		db:  func(s *Settings) DatabaseConfig { return s.TestDatabase },
		dst: func(s *Settings) *string { return &s.TestDatabaseURI },
	},
}

// Keys returns every setting name in declaration order, each derived URI
// placed after its database group.
func Keys() []string {
	keys := make([]string, 0, len(fields)+len(derivedURIs))
	for _, f := range fields {
		keys = append(keys, f.key)
		// a derived URI follows the last of its components
		for _, d := range derivedURIs {
			if d.components[len(d.components)-1] == f.key {
				keys = append(keys, d.key)
			}
		}
	}
	return keys
}

// RequiredKeys returns the settings without a default
func RequiredKeys() []string {
	var keys []string
	for _, f := range fields {
		if !f.hasDefault {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// DerivedKeys returns the settings that are computed and never read
func DerivedKeys() []string {
	keys := make([]string, 0, len(derivedURIs))
	for _, d := range derivedURIs {
		keys = append(keys, d.key)
	}
	return keys
}

// Defaults returns the compiled-in default of every optional setting
func Defaults() map[string]string {
	out := make(map[string]string)
	for _, f := range fields {
		if f.hasDefault {
			out[f.key] = f.def
		}
	}
	return out
}

func isSecret(key string) bool {
	for _, f := range fields {
		if f.key == key {
			return f.secret
		}
	}
	return false
}
