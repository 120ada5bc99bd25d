package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/config"
	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addedID = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = filepath.Join(dir, "agenda.db")
	cfg.StateDSN = filepath.Join(dir, "state.db")
	cfg.PasswordScheme = cryptox.SchemeArgon2id
	cfg.LogLevel = "error"
	return cfg
}

// run executes one command against a copy of cfg, like a fresh process.
func run(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	c := *cfg
	cmd := NewRootCommand(&c)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func mustRun(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, "", args...)
	require.NoError(t, err, out)
	return out
}

func registerAndLogin(t *testing.T, cfg *config.Config, username string) {
	t.Helper()
	mustRun(t, cfg, "register", "--name", "User "+username, "--email", username+"@example.com", "--username", username)
	out := mustRun(t, cfg, "login", username)
	require.Contains(t, out, "Logged in as "+username)
}

func TestLoginSessionSurvivesRestart(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)

	assert.Equal(t, "Not logged in.\n", mustRun(t, cfg, "whoami"))

	out := mustRun(t, cfg, "register", "--name", "Ana", "--email", "Ana@Example.com", "--username", "Ana")
	assert.Contains(t, out, "Registered ana.")

	out = mustRun(t, cfg, "login", "ANA@example.com")
	assert.Contains(t, out, "Logged in as ana.")
	assert.Equal(t, "ana\n", mustRun(t, cfg, "whoami"))

	assert.Contains(t, mustRun(t, cfg, "logout"), "Logged out.")
	assert.Equal(t, "Not logged in.\n", mustRun(t, cfg, "whoami"))
}

func TestLogin_WrongPassword(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	mustRun(t, cfg, "register", "--name", "Ana", "--email", "ana@example.com", "--username", "ana")

	stubPassword(t, "wrong")
	_, err := run(t, cfg, "", "login", "ana")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = run(t, cfg, "", "login", "nobody")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestRegister_Errors(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	mustRun(t, cfg, "register", "--name", "Ana", "--email", "ana@example.com", "--username", "ana")

	_, err := run(t, cfg, "", "register", "--name", "X", "--email", "x@example.com", "--username", "ANA")
	require.ErrorIs(t, err, common.ErrUsernameTaken)

	_, err = run(t, cfg, "", "register", "--name", "X", "--email", "not-an-email", "--username", "xavier")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = run(t, cfg, "", "register", "--name", "X", "--email", "x@example.com")
	require.Error(t, err)
}

func TestContactsRequireLogin(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "", "contacts", "list")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestContactsLifecycle(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	registerAndLogin(t, cfg, "ana")

	assert.Equal(t, "No contacts.\n", mustRun(t, cfg, "contacts", "list"))

	out := mustRun(t, cfg, "contacts", "add", "--name", "bob", "--phone", "555-0101")
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	bobID := m[1]

	mustRun(t, cfg, "contacts", "add", "--name", "Alice", "--age", "30")

	out = mustRun(t, cfg, "contacts", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "Alice"))
	assert.Equal(t, bobID+"  bob · 555-0101", lines[1])

	out = mustRun(t, cfg, "contacts", "list", "--grouped")
	assert.Equal(t, "A (1)\n  Alice\n\nB (1)\n  bob · 555-0101\n", out)

	mustRun(t, cfg, "contacts", "update", bobID, "--name", "Bobby", "--phone", "", "--hobbies", "chess")
	out = mustRun(t, cfg, "contacts", "show", bobID)
	assert.Contains(t, out, "Name:     Bobby\n")
	assert.Contains(t, out, "Hobbies:  chess\n")
	assert.NotContains(t, out, "Phone:")

	_, err := run(t, cfg, "", "contacts", "update", bobID, "--name", " ")
	require.ErrorIs(t, err, common.ErrorValidation)

	assert.Contains(t, mustRun(t, cfg, "contacts", "delete", bobID), "Deleted "+bobID)
	_, err = run(t, cfg, "", "contacts", "show", bobID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestContactsAreScopedToSession(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	registerAndLogin(t, cfg, "ana")
	mustRun(t, cfg, "contacts", "add", "--name", "Carol")

	registerAndLogin(t, cfg, "bob")
	assert.Equal(t, "No contacts.\n", mustRun(t, cfg, "contacts", "list"))

	mustRun(t, cfg, "login", "ana")
	assert.Contains(t, mustRun(t, cfg, "contacts", "list"), "Carol")
}

func TestUsersListAndClear(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	registerAndLogin(t, cfg, "ana")
	mustRun(t, cfg, "contacts", "add", "--name", "Carol")

	out := mustRun(t, cfg, "users", "list")
	assert.Contains(t, out, "ana  User ana <ana@example.com>")

	out, err := run(t, cfg, "no\n", "users", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Contains(t, mustRun(t, cfg, "users", "list"), "ana")

	out, err = run(t, cfg, "yes\n", "users", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "All users deleted.")
	assert.Equal(t, "No users.\n", mustRun(t, cfg, "users", "list"))

	// The session still names ana but the owner record is gone.
	_, err = run(t, cfg, "", "contacts", "add", "--name", "Dave")
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestProviderMode(t *testing.T) {
	stubPassword(t, "secret1")
	cfg := testConfig(t)
	cfg.AuthMode = config.AuthModeProvider

	out := mustRun(t, cfg, "register", "--name", "Ana", "--email", "ana@example.com", "--username", "ana")
	assert.Contains(t, out, "Check your inbox")

	_, err := run(t, cfg, "", "verify", "status")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = run(t, cfg, "", "verify", "resend")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "", "--backend", "mongo", "whoami")
	require.ErrorContains(t, err, "unknown backend")
}

func TestVersionNeedsNoStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "mongo"
	out, err := run(t, cfg, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: N/A")
}
