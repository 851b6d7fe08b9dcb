package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/support-service/pkg/jwt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "support dev")
	assert.Contains(t, out, "commit: none")
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "support 1.0.0")
	assert.Contains(t, out, "built: 2026-01-01")
}

func TestRootCmdHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "migrate", "token", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "")

	out, err := run(t, "--config", t.TempDir(), "token", "--user", "op-1", "--email", "op@example.com", "--kind", "admin")
	require.NoError(t, err)

	manager, err := jwt.NewManager("cli-secret", "", time.Hour)
	require.NoError(t, err)
	claims, err := manager.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.UserID)
	assert.Equal(t, "op@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Kind)
}

func TestTokenCmd_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := run(t, "--config", t.TempDir(), "token")
	assert.Error(t, err, "missing user")

	_, err = run(t, "--config", t.TempDir(), "token", "--user", "u", "--kind", "robot")
	assert.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_FILE_PATH", filepath.Join(t.TempDir(), "support.db"))

	out, err := run(t, "--config", t.TempDir(), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated 2 tables")
}
