package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write OAuth client credentials to the config file",
	Long: `Write the OAuth client ID and secret of your YNAB application to the config
file. Register the application at https://app.ynab.com/settings/developer with
the redirect URI shown by 'budget-mcp config show'.

Run without flags to be prompted; the secret is read without echo.

Examples:
  budget-mcp config init
  budget-mcp config init --client-id "xxx" --client-secret "yyy"`,
	RunE: runConfigInit,
}

// Flags for config init.
var (
	configInitClientID     string
	configInitClientSecret string
)

func init() {
	configInitCmd.Flags().StringVar(
		&configInitClientID, "client-id", "", "OAuth client ID (for non-interactive mode)")
	configInitCmd.Flags().StringVar(
		&configInitClientSecret, "client-secret", "", "OAuth client secret (for non-interactive mode)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	secret := "(not set)"
	if cfg.ClientSecret != "" {
		secret = maskSecret(cfg.ClientSecret)
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "(not set)"
	}

	cmd.Println(field("Config", loader.Path()))
	cmd.Println(field("Client ID", clientID))
	cmd.Println(field("Secret", secret))
	cmd.Println(field("Redirect URI", cfg.RedirectURI()))
	cmd.Println(field("Listen", cfg.HTTPAddr))
	cmd.Println(field("Read-only", fmt.Sprintf("%t", cfg.ReadOnly)))
	cmd.Println(field("PKCE", fmt.Sprintf("%t", cfg.UsePKCE)))
	cmd.Println(field("Rate limit", fmt.Sprintf("%d per %s", cfg.RateLimit, cfg.RateWindow.Duration)))
	cmd.Println(field("Token store", cfg.TokenStore))

	if err := cfg.Validate(); err != nil {
		cmd.Println()
		cmd.Println(errorStyle.Render("Configuration problems:"))
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Println("  " + line)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	clientID := configInitClientID
	if clientID == "" {
		cmd.Print("Client ID: ")
		clientID, _ = reader.ReadString('\n')
		clientID = strings.TrimSpace(clientID)
	}
	clientSecret := configInitClientSecret
	if clientSecret == "" {
		cmd.Print("Client secret: ")
		clientSecret = readSecret(reader)
		cmd.Println()
	}
	if clientID == "" || clientSecret == "" {
		return errors.New("client ID and client secret are required")
	}

	cfg.ClientID = clientID
	cfg.ClientSecret = clientSecret
	if err := loader.Save(cfg); err != nil {
		return err
	}

	cmd.Println(successStyle.Render("Saved " + loader.Path()))
	cmd.Println(field("Redirect URI", cfg.RedirectURI()))
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
