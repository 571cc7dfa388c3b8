package settings

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// BuildPostgresURI derives postgresql://{user}:{password}@{hostname}:{port}/{db}.
// User and password are percent-encoded. The result depends on the five
// components only; connection options from PG* variables are applied when
// the database is opened.
func BuildPostgresURI(db DatabaseConfig) (string, error) {
	if db.Hostname == "" {
		return "", ErrURIDerivation.Wrap(errors.New("hostname is empty"))
	}
	if strings.ContainsFunc(db.Hostname, invalidHostRune) {
		return "", ErrURIDerivation.Wrap(fmt.Errorf("hostname %q contains invalid characters", db.Hostname))
	}

	port, err := strconv.Atoi(db.Port)
	if err != nil || strconv.Itoa(port) != db.Port {
		return "", ErrURIDerivation.Wrap(fmt.Errorf("port %q is not a number", db.Port))
	}
	if port < 1 || port > 65535 {
		return "", ErrURIDerivation.Wrap(fmt.Errorf("port %d out of range", port))
	}

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(db.User, db.Password),
		Host:   net.JoinHostPort(db.Hostname, db.Port),
		Path:   "/" + db.DB,
	}
	uri := u.String()

	if _, err := url.Parse(uri); err != nil {
		return "", ErrURIDerivation.Wrap(err)
	}
	return uri, nil
}

func invalidHostRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune("/?#@[]%\\", r)
}

// RedactURI masks the password of a connection URI
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return redactedValue
	}
	return u.Redacted()
}
