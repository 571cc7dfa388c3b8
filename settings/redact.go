package settings

import (
	"strconv"
	"strings"
)

// Entry is one line of a settings listing
type Entry struct {
	Key    string
	Value  string
	Source string
}

// Redacted lists every setting in declaration order with secrets masked and
// the password inside each database URI replaced.
func (s *Settings) Redacted() []Entry {
	values := map[string]string{
		KeySecretKey:                 s.SecretKey,
		KeyEnvironment:               s.Environment.String(),
		KeyBcryptRounds:              strconv.Itoa(s.BcryptRounds),
		KeyAccessTokenExpireMinutes:  strconv.Itoa(s.AccessTokenExpireMinutes),
		KeyRefreshTokenExpireMinutes: strconv.Itoa(s.RefreshTokenExpireMinutes),
		KeyBackendCORSOrigins:        "[" + strings.Join(s.BackendCORSOrigins, ", ") + "]",
		KeyAllowedHosts:              "[" + strings.Join(s.AllowedHosts, ", ") + "]",
		KeyProjectName:               s.ProjectName,
		KeyVersion:                   s.Version,
		KeyDescription:               s.Description,
		KeyDefaultDatabaseHostname:   s.DefaultDatabase.Hostname,
		KeyDefaultDatabaseUser:       s.DefaultDatabase.User,
		KeyDefaultDatabasePassword:   s.DefaultDatabase.Password,
		KeyDefaultDatabasePort:       s.DefaultDatabase.Port,
		KeyDefaultDatabaseDB:         s.DefaultDatabase.DB,
		KeyDefaultDatabaseURI:        RedactURI(s.DefaultDatabaseURI),
		KeyTestDatabaseHostname:      s.TestDatabase.Hostname,
		KeyTestDatabaseUser:          s.TestDatabase.User,
		KeyTestDatabasePassword:      s.TestDatabase.Password,
		KeyTestDatabasePort:          s.TestDatabase.Port,
		KeyTestDatabaseDB:            s.TestDatabase.DB,
		KeyTestDatabaseURI:           RedactURI(s.TestDatabaseURI),
		KeyFirstSuperuserEmail:       s.FirstSuperuserEmail,
		KeyFirstSuperuserPassword:    s.FirstSuperuserPassword,
	}

	entries := make([]Entry, 0, len(values))
	for _, key := range Keys() {
		entries = append(entries, Entry{
			Key:    key,
			Value:  maskIfSecret(key, values[key]),
			Source: s.sources[key],
		})
	}
	return entries
}

// String never prints secrets
func (s *Settings) String() string {
	var b strings.Builder
	b.WriteString("Settings{")
	for i, e := range s.Redacted() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Key)
		b.WriteString("=")
		b.WriteString(e.Value)
	}
	b.WriteString("}")
	return b.String()
}
