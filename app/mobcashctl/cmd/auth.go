package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/app/mobcashctl/cmd/utils/credstore"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
)

var authLoginToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored API token",
	Long: `Stores the bearer token every API call is sent with.

The token lives in $MOBCASH_HOME/credentials.json (default ~/.mobcashctl),
readable by the current user only. MOBCASH_TOKEN, when set, takes precedence.

Examples:
  mobcashctl auth login --token eyJhbGciOi...
  echo "$TOKEN" | mobcashctl auth login --token -
  mobcashctl auth status
  mobcashctl auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(authLoginToken)
		if token == "-" {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read token from stdin: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return errors.New("empty token")
		}

		now := time.Now()
		if err := client.CheckExpiry(token, now); err != nil {
			return err
		}

		cred := &credstore.Credential{
			Token:   token,
			APIURL:  cfg.APIURL,
			SavedAt: now.UTC(),
		}
		if exp, ok := client.TokenExpiry(token); ok {
			exp = exp.UTC()
			cred.ExpiresAt = &exp
		}

		if err := credstore.Save(cfg.Home, cred); err != nil {
			return fmt.Errorf("failed to store credential: %w", err)
		}

		fmt.Printf("✅ Token stored in %s\n", credstore.Path(cfg.Home))
		if cred.ExpiresAt != nil {
			fmt.Printf("   Expires %s\n", formatDate(models.Timestamp{Time: *cred.ExpiresAt}))
		}
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which token is in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Token != "" {
			fmt.Println("🔑 Using MOBCASH_TOKEN from the environment")
			printExpiry(cfg.Token)
			return nil
		}

		cred, err := credstore.Load(cfg.Home)
		if err != nil {
			return err
		}
		fmt.Printf("🔑 Stored token (saved %s)\n", formatDate(models.Timestamp{Time: cred.SavedAt}))
		if cred.APIURL != "" && cred.APIURL != cfg.APIURL {
			fmt.Printf("⚠️  Saved for %s, current API is %s\n", cred.APIURL, orDash(cfg.APIURL))
		}
		printExpiry(cred.Token)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credstore.Clear(cfg.Home); err != nil {
			return fmt.Errorf("failed to remove credential: %w", err)
		}
		fmt.Println("✅ Stored token removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authStatusCmd, authLogoutCmd)

	authLoginCmd.Flags().StringVarP(&authLoginToken, "token", "t", "", "Bearer token, or - to read it from stdin (required)")
	_ = authLoginCmd.MarkFlagRequired("token")
}

func printExpiry(token string) {
	exp, ok := client.TokenExpiry(token)
	switch {
	case !ok:
		fmt.Println("   No expiry claim")
	case time.Now().Before(exp):
		fmt.Printf("   Valid until %s\n", formatDate(models.Timestamp{Time: exp}))
	default:
		fmt.Printf("   ❌ Expired on %s, run: mobcashctl auth login --token <token>\n", formatDate(models.Timestamp{Time: exp}))
	}
}
