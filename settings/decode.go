package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrTypeCoercion.Wrap(err)
	}
	return v, nil
}

func parseEnvironment(raw string) (Environment, error) {
	for _, env := range Environments {
		if raw == string(env) {
			return env, nil
		}
	}
	return "", ErrEnumConstraint
}

// decodeList is the single place list settings are parsed. Only a JSON
// array of strings is accepted; `null` is rejected.
func decodeList(raw string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		decodeErr := &ListDecodeError{Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			decodeErr.Offset = syntaxErr.Offset
		}
		return nil, ErrTypeCoercion.Wrap(decodeErr)
	}
	if list == nil {
		return nil, ErrTypeCoercion.Wrap(&ListDecodeError{Err: errors.New("expected a JSON array, got null")})
	}
	return list, nil
}

func parseStringList(raw string) ([]string, error) {
	return decodeList(raw)
}

func parseURLList(raw string) ([]string, error) {
	list, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	for i, item := range list {
		if err := checkHTTPURL(item); err != nil {
			return nil, ErrTypeCoercion.Wrap(fmt.Errorf("item %d: %w", i, err))
		}
	}
	return list, nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

func parseEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return "", ErrTypeCoercion.Wrap(err)
	}
	return email, nil
}
