package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, BackendSQLite, c.Backend)
	assert.Equal(t, "agenda.db", c.DatabaseDSN)
	assert.Equal(t, "plain", c.PasswordScheme)
	assert.Equal(t, AuthModeCredentials, c.AuthMode)
	assert.Equal(t, IdentityEmulator, c.IdentityProvider)
	assert.Equal(t, 60*time.Minute, c.TokenValidityDuration)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.False(t, c.ImageOffload)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgs_IsDefaults(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestLoadConfig_JSONFileThenFlags(t *testing.T) {
	path := writeTemp(t, "agenda.json", `{
		"backend": "postgres",
		"database_dsn": "postgres://db/agenda",
		"token_validity_duration": "5m",
		"identity_provider": "rest",
		"image_offload": true
	}`)

	c, err := LoadConfig([]string{"-c", path, "-a", ":9090", "-t", "15", "-unknown", "x"})
	require.NoError(t, err)

	want := defaults()
	want.Backend = BackendPostgres
	want.DatabaseDSN = "postgres://db/agenda"
	want.IdentityProvider = IdentityREST
	want.ImageOffload = true
	want.HTTPAddr = ":9090"
	want.TokenValidityDuration = 15 * time.Minute
	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeTemp(t, "agenda.yaml", `
password_scheme: argon2id
token_validity_duration: 120000000000
s3_bucket: photos
`)

	c, err := LoadConfig([]string{"--config=" + path})
	require.NoError(t, err)
	assert.Equal(t, "argon2id", c.PasswordScheme)
	assert.Equal(t, 2*time.Minute, c.TokenValidityDuration)
	assert.Equal(t, "photos", c.S3Bucket)
	assert.Equal(t, "agenda.db", c.DatabaseDSN, "keys missing from the file keep their defaults")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorContains(t, err, "read config")

	bad := writeTemp(t, "bad.json", `{"backend": `)
	_, err = LoadConfig([]string{"-c", bad})
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig([]string{"-k", "oracle"})
	assert.ErrorContains(t, err, `unknown backend "oracle"`)

	_, err = LoadConfig([]string{"-m", "md5"})
	assert.ErrorContains(t, err, `unknown password scheme "md5"`)

	_, err = LoadConfig([]string{"-t", "soon"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.AuthMode = "magic"
	assert.ErrorContains(t, c.Validate(), "unknown auth mode")

	c = defaults()
	c.IdentityProvider = "ldap"
	assert.ErrorContains(t, c.Validate(), "unknown identity provider")
}

func TestBindFlags_OverrideFileValues(t *testing.T) {
	c := defaults()
	c.DatabaseDSN = "from-file.db"

	fs := pflag.NewFlagSet("agenda", pflag.ContinueOnError)
	BindFlags(fs, c)
	require.NoError(t, fs.Parse([]string{"--backend", "postgres", "--auth-mode=provider", "--image-offload", "-c", "x.yaml"}))

	assert.Equal(t, BackendPostgres, c.Backend)
	assert.Equal(t, AuthModeProvider, c.AuthMode)
	assert.True(t, c.ImageOffload)
	assert.Equal(t, "from-file.db", c.DatabaseDSN)

	path, err := fs.GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", path)
}
