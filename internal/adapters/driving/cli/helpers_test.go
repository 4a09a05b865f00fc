package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// runCLI executes the root command with args and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	configPath = ""
	verbose = false
	serveHTTPAddr = ""
	authLoginScope = string(domain.ScopeReadOnly)
	authLoginNoBrowser = false
	configInitClientID = ""
	configInitClientSecret = ""
}

// writeConfig writes a config file into a temp dir and clears YNAB_* overrides.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	for _, k := range []string{
		file.EnvClientID, file.EnvClientSecret, file.EnvBaseURL, file.EnvReadOnly, file.EnvAPIBaseURL,
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	return path
}
