package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/config/file"
	oauthweb "github.com/custodia-labs/budget-mcp/internal/adapters/driving/oauth"
	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the YNAB authorization",
	Long: `Sign in to YNAB, inspect the stored authorization, or sign out.

A login only outlives the command when token_store = "sqlite" is set in the
config file. With the default memory store, sign in through the authorize
tool of a running server instead.

Examples:
  budget-mcp auth login
  budget-mcp auth login --scope read-write
  budget-mcp auth status
  budget-mcp auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to YNAB in the browser",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authorization state",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE:  runAuthLogout,
}

// Flags for auth login.
var (
	authLoginScope     string
	authLoginNoBrowser bool
)

func init() {
	authLoginCmd.Flags().StringVar(
		&authLoginScope, "scope", string(domain.ScopeReadOnly), "access to request (read-only, read-write)")
	authLoginCmd.Flags().BoolVar(
		&authLoginNoBrowser, "no-browser", false, "print the URL without opening a browser")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(loader, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.TokenStore != file.TokenStoreSQLite {
		cmd.PrintErrln(warningStyle.Render(
			`token_store is "memory": the credential is discarded when this command exits.`))
	}

	gin.SetMode(gin.ReleaseMode)
	web := oauthweb.NewServer(a.auth, oauthweb.Config{CallbackPath: cfg.RedirectPath})
	if err := web.Start(cfg.HTTPAddr); err != nil {
		return err
	}
	defer web.Stop(context.Background()) //nolint:errcheck

	_, authURL, err := a.auth.BeginAuthorization(cmd.Context(), domain.Scope(authLoginScope), "")
	if err != nil {
		return err
	}

	cmd.Println("Open this URL to authorize budget-mcp:")
	cmd.Println()
	cmd.Println("  " + authURL)
	cmd.Println()
	if !authLoginNoBrowser && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := oauthweb.OpenBrowser(authURL); err != nil {
			logger.Debug("opening browser: %v", err)
		}
	}
	cmd.Println(mutedStyle.Render("Waiting for the browser callback..."))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AuthRequestTTL.Duration)
	defer cancel()
	cred, err := web.WaitForCredential(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("authorization not completed within %s", cfg.AuthRequestTTL.Duration)
		}
		return fmt.Errorf("authorization failed: %w", err)
	}

	cmd.Println(successStyle.Render("Authorized"))
	cmd.Println(field("Scope", cred.Scope.String()))
	cmd.Println(field("Expires", cred.ExpiresAt.Local().Format(time.RFC1123)))
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(loader, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	state := a.auth.State(ctx)

	cmd.Println(field("State", stateStyle(state).Render(state.String())))
	cmd.Println(field("", state.Description()))
	if state == domain.AuthStateAuthorized {
		cred, err := a.auth.Credential(ctx)
		if err != nil {
			return err
		}
		cmd.Println(field("Scope", cred.Scope.String()))
		cmd.Println(field("Expires", cred.ExpiresAt.Local().Format(time.RFC1123)))
		refresh := "no"
		if cred.HasRefreshToken() {
			refresh = "yes"
		}
		cmd.Println(field("Refreshable", refresh))
	}
	store := cfg.TokenStore
	if a.store != nil {
		store += " (" + a.store.Path() + ")"
	}
	cmd.Println(field("Token store", store))
	cmd.Println(field("Config", loader.Path()))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(loader, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.auth.Revoke(cmd.Context()); err != nil {
		return fmt.Errorf("removing credential: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}
