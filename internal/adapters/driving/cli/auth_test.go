package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

func TestAuthCmd_Subcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range authCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"login", "status", "logout"}, names)
	assert.Equal(t, string(domain.ScopeReadOnly), authLoginCmd.Flag("scope").DefValue)
}

func TestAuthStatus_NotAuthorized(t *testing.T) {
	path := writeConfig(t, `
client_id = "id"
client_secret = "secret"
`)

	out, err := runCLI(t, "auth", "status", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "INIT")
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, path)
}

func TestAuthStatus_StoredCredential(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(`
client_id = "id"
client_secret = "secret"
token_store = "sqlite"
data_dir = %q
`, dataDir))

	store, err := sqlite.NewStore(dataDir)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, store.TokenStore().Save(context.Background(), domain.Credential{
		ID:           "cred-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Scope:        domain.ScopeReadOnly,
		IssuedAt:     now,
		ExpiresAt:    now.Add(time.Hour),
	}))
	require.NoError(t, store.Close())

	out, err := runCLI(t, "auth", "status", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "AUTHORIZED")
	assert.Contains(t, out, "read-only")
	assert.Contains(t, out, "sqlite")

	t.Run("logout clears it", func(t *testing.T) {
		out, err := runCLI(t, "auth", "logout", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Signed out.")

		out, err = runCLI(t, "auth", "status", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "INIT")
	})
}

func TestAuthStatus_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "")

	_, err := runCLI(t, "auth", "status", "--config", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_secret is required")
}

func TestAuthLogin_InvalidScope(t *testing.T) {
	path := writeConfig(t, `
client_id = "id"
client_secret = "secret"
http_addr = "127.0.0.1:0"
`)

	_, err := runCLI(t, "auth", "login", "--config", path, "--scope", "admin", "--no-browser")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
