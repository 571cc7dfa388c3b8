package flagx

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issueOptions struct {
	Email    string        `flag:"email,e" usage:"account email" required:"true"`
	Password string        `flag:"password"`
	TTL      time.Duration `flag:"ttl" default:"15m"`
	Rounds   int           `flag:"rounds" default:"12"`
	Limit    uint          `flag:"limit"`
	JSON     bool          `flag:"json"`
	Scopes   []string      `flag:"scope" default:"read,write"`
	Ignored  string
	hidden   string `flag:"hidden"`
}

func newCommand(t *testing.T, opts *issueOptions) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "issue", RunE: func(*cobra.Command, []string) error { return nil }}
	require.NoError(t, Bind(cmd, opts))
	return cmd
}

func TestBind_RegistersFlags(t *testing.T) {
	var opts issueOptions
	cmd := newCommand(t, &opts)

	email := cmd.Flags().Lookup("email")
	require.NotNil(t, email)
	assert.Equal(t, "e", email.Shorthand)
	assert.Equal(t, "account email", email.Usage)
	assert.Equal(t, []string{"true"}, email.Annotations[cobra.BashCompOneRequiredFlag])

	assert.Equal(t, "15m0s", cmd.Flags().Lookup("ttl").DefValue)
	assert.Equal(t, "12", cmd.Flags().Lookup("rounds").DefValue)
	assert.Equal(t, "[read,write]", cmd.Flags().Lookup("scope").DefValue)
	assert.Nil(t, cmd.Flags().Lookup("hidden"))
	assert.Nil(t, cmd.Flags().Lookup("Ignored"))
}

func TestBind_FieldValueAsDefault(t *testing.T) {
	opts := issueOptions{Password: "from-struct", JSON: true}
	cmd := newCommand(t, &opts)

	assert.Equal(t, "from-struct", cmd.Flags().Lookup("password").DefValue)
	assert.Equal(t, "true", cmd.Flags().Lookup("json").DefValue)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want issueOptions
	}{
		{
			name: "defaults",
			args: []string{"-e", "a@example.com"},
			want: issueOptions{Email: "a@example.com", TTL: 15 * time.Minute, Rounds: 12, Scopes: []string{"read", "write"}},
		},
		{
			name: "overrides",
			args: []string{"--email", "b@example.com", "--password", "pw", "--ttl", "1h", "--rounds", "4",
				"--limit", "3", "--json", "--scope", "admin"},
			want: issueOptions{Email: "b@example.com", Password: "pw", TTL: time.Hour, Rounds: 4, Limit: 3,
				JSON: true, Scopes: []string{"admin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts issueOptions
			cmd := newCommand(t, &opts)
			require.NoError(t, cmd.ParseFlags(tt.args))

			var got issueOptions
			require.NoError(t, Parse(cmd, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_MissingRequired(t *testing.T) {
	var opts issueOptions
	cmd := newCommand(t, &opts)
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"email" not set`)
}

func TestBind_Errors(t *testing.T) {
	var s string
	assert.ErrorIs(t, Bind(&cobra.Command{}, &s), ErrNotStructPointer)
	assert.ErrorIs(t, Bind(&cobra.Command{}, issueOptions{}), ErrNotStructPointer)
	assert.ErrorIs(t, Parse(&cobra.Command{}, nil), ErrNotStructPointer)

	type badDefault struct {
		N int `flag:"n" default:"many"`
	}
	assert.Error(t, Bind(&cobra.Command{}, &badDefault{}))

	type badType struct {
		F float64 `flag:"f"`
	}
	assert.Error(t, Bind(&cobra.Command{}, &badType{}))
	assert.Panics(t, func() { MustBind(&cobra.Command{}, &badType{}) })
}

func TestParse_UnregisteredFlag(t *testing.T) {
	var opts issueOptions
	assert.Error(t, Parse(&cobra.Command{}, &opts))
}
