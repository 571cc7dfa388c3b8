package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/cpipeline/database"
	"github.com/KOMKZ/cpipeline/jwt"
	"github.com/KOMKZ/cpipeline/settings"
)

func baseEnv() map[string]string {
	return map[string]string{
		settings.KeySecretKey:               "s3cret",
		settings.KeyBcryptRounds:            "4",
		settings.KeyDefaultDatabaseHostname: "db",
		settings.KeyDefaultDatabaseUser:     "app",
		settings.KeyDefaultDatabasePassword: "pw",
		settings.KeyDefaultDatabasePort:     "5432",
		settings.KeyDefaultDatabaseDB:       "cpipeline",
		settings.KeyFirstSuperuserEmail:     "admin@example.com",
		settings.KeyFirstSuperuserPassword:  "changeme",
	}
}

type harness struct {
	root string
	env  map[string]string
	dbs  map[string]database.Config
}

func newHarness(t *testing.T, env map[string]string) *harness {
	t.Helper()
	return &harness{
		root: t.TempDir(),
		env:  env,
		dbs: map[string]database.Config{
			database.InstanceDefault: {
				Driver:       database.DriverSQLite,
				DSN:          filepath.Join(t.TempDir(), "app.db"),
				MaxOpenConns: 1,
			},
		},
	}
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	opts := &rootOptions{
		environ: func() []string {
			pairs := make([]string, 0, len(h.env))
			for k, v := range h.env {
				pairs = append(pairs, k+"="+v)
			}
			return pairs
		},
		databases: h.dbs,
	}
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--project-root", h.root, "--manifest=-"}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, baseEnv())

	out, _, err := h.run("config", "show")
	require.NoError(t, err)

	assert.Regexp(t, `SECRET_KEY\s+\*{10}\s+env`, out)
	assert.Regexp(t, `BCRYPT_ROUNDS\s+4\s+env`, out)
	assert.Regexp(t, `PROJECT_NAME\s+cpipeline\s+default`, out)
	assert.Contains(t, out, "postgresql://app:")
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "changeme")
}

func TestConfigShow_JSONWithoutSources(t *testing.T) {
	h := newHarness(t, baseEnv())

	out, _, err := h.run("config", "show", "--json", "--sources=false")
	require.NoError(t, err)

	var entries []entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, len(settings.Keys()))

	byKey := make(map[string]entryJSON, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "4", byKey[settings.KeyBcryptRounds].Value)
	assert.Empty(t, byKey[settings.KeyBcryptRounds].Source)
	assert.NotEqual(t, "s3cret", byKey[settings.KeySecretKey].Value)
}

func TestConfigShow_DotEnv(t *testing.T) {
	env := baseEnv()
	delete(env, settings.KeySecretKey)
	h := newHarness(t, env)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env"), []byte("SECRET_KEY=from-file\nVERSION=2.3\n"), 0o600))

	out, _, err := h.run("config", "show")
	require.NoError(t, err)
	assert.Regexp(t, `SECRET_KEY\s+\*{10}\s+dotenv:`, out)
	assert.Regexp(t, `VERSION\s+2\.3\s+dotenv:`, out)
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(env map[string]string)
		wantErr    bool
		wantOut    []string
		wantStderr []string
	}{
		{
			name:    "valid",
			mutate:  func(map[string]string) {},
			wantOut: []string{"settings OK (environment DEV"},
		},
		{
			name: "derived key ignored",
			mutate: func(env map[string]string) {
				env[settings.KeyDefaultDatabaseURI] = "postgresql://elsewhere/db"
			},
			wantOut: []string{"warning: " + settings.KeyDefaultDatabaseURI + " from env is ignored", "settings OK"},
		},
		{
			name: "violations",
			mutate: func(env map[string]string) {
				delete(env, settings.KeySecretKey)
				env[settings.KeyEnvironment] = "QA"
				env[settings.KeyDefaultDatabasePort] = "abc"
			},
			wantErr: true,
			wantStderr: []string{
				"invalid setting(s):",
				settings.KeySecretKey,
				settings.KeyEnvironment,
				settings.KeyDefaultDatabaseURI,
			},
		},
		{
			name: "rejected by consumers",
			mutate: func(env map[string]string) {
				env[settings.KeyBcryptRounds] = "3"
				env[settings.KeyAccessTokenExpireMinutes] = "-1"
			},
			wantErr: true,
			wantStderr: []string{
				"2 setting(s) rejected by their consumers:",
				"auth.BcryptCost: must be no less than 4",
				"jwt.TTL: must be no less than",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.mutate(env)
			h := newHarness(t, env)

			out, stderr, err := h.run("config", "check")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, want := range tt.wantStderr {
				assert.Contains(t, stderr, want)
			}
		})
	}
}

func TestBootstrapSuperuser(t *testing.T) {
	h := newHarness(t, baseEnv())

	out, _, err := h.run("bootstrap", "superuser")
	require.NoError(t, err)
	assert.Contains(t, out, "created superuser admin@example.com")

	out, _, err = h.run("bootstrap", "superuser")
	require.NoError(t, err)
	assert.Contains(t, out, "superuser admin@example.com already exists")
}

func TestBootstrapSuperuser_InvalidSettings(t *testing.T) {
	env := baseEnv()
	delete(env, settings.KeySecretKey)
	h := newHarness(t, env)

	_, _, err := h.run("bootstrap", "superuser")
	var loadErr *settings.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, []string{settings.KeySecretKey}, loadErr.Fields())
}

func TestTokenIssue(t *testing.T) {
	h := newHarness(t, baseEnv())
	_, _, err := h.run("bootstrap", "superuser")
	require.NoError(t, err)

	out, _, err := h.run("token", "issue", "-e", "admin@example.com", "-p", "changeme", "--json")
	require.NoError(t, err)

	var pair jwt.TokenPair
	require.NoError(t, json.Unmarshal([]byte(out), &pair))
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.EqualValues(t, 11520*60, pair.ExpiresIn)

	_, _, err = h.run("token", "issue", "-e", "admin@example.com", "-p", "wrong")
	assert.Error(t, err)
}

func TestTokenIssue_RequiresFlags(t *testing.T) {
	h := newHarness(t, baseEnv())

	_, _, err := h.run("token", "issue", "--email", "admin@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"password"`)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, baseEnv())

	out, _, err := h.run("health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
	assert.Contains(t, out, `"database:default"`)
}

func TestVersion(t *testing.T) {
	h := newHarness(t, baseEnv())
	h.env[settings.KeyVersion] = "4.2"

	out, _, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "cpipeline 4.2 (dev)")
	assert.Contains(t, out, "Container Pipeline")
}
