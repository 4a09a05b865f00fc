package cli

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/budget-mcp/internal/adapters/driving/mcp"
	oauthweb "github.com/custodia-labs/budget-mcp/internal/adapters/driving/oauth"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// mcpPath is where the streamable HTTP transport is mounted.
const mcpPath = "/mcp"

var serveHTTPAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

By default the server speaks JSON-RPC over stdio, for use with Claude Desktop
and other MCP clients. The OAuth routes (/oauth/authorize and the callback)
are always served on http_addr so the authorize tool can complete.

Use --http to serve MCP over streamable HTTP at /mcp on the given address,
next to the OAuth routes.

Examples:
  # Stdio mode (default)
  budget-mcp serve

  # HTTP mode
  budget-mcp serve --http 127.0.0.1:8000

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "ynab": {
        "command": "/path/to/budget-mcp",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "serve MCP over HTTP on this address (empty = stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(loader, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger.Section("budget-mcp serve")
	logger.Debug("config: %s", loader.Path())
	logger.Debug("redirect URI: %s", cfg.RedirectURI())
	logger.Debug("read-only: %t, pkce: %t", cfg.ReadOnly, cfg.UsePKCE)

	// Only verbosity is applied live; other keys need a restart.
	if w, err := file.NewWatcher(loader, func(c file.Config) {
		logger.SetVerbose(verbose || c.Verbose)
	}); err != nil {
		logger.Debug("config hot reload disabled: %v", err)
	} else {
		defer w.Close()
		go w.Run(ctx)
	}

	server, err := mcp.NewServer(&mcp.Ports{Auth: a.auth, Budget: a.budget})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	web := oauthweb.NewServer(a.auth, oauthweb.Config{CallbackPath: cfg.RedirectPath})
	addr := cfg.HTTPAddr
	if serveHTTPAddr != "" {
		addr = serveHTTPAddr
		web.Mount(mcpPath, server.Handler())
	}
	if err := web.Start(addr); err != nil {
		return err
	}
	defer web.Stop(context.Background()) //nolint:errcheck

	if serveHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s%s\n", web.Addr(), mcpPath)
		<-ctx.Done()
		return nil
	}

	logger.Info("serving MCP over stdio")
	return server.Run(ctx)
}
