package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/config"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "mobcashctl",
	Short:   "mobcash back-office console",
	Version: Version,
	Long: `
💠 mobcash back-office console (` + Version + `)

Browse users, review balance recharges and manage betting platforms from the
terminal.

CONFIGURATION (environment or .env):
  MOBCASH_API_URL       API root (required)
  MOBCASH_TOKEN         Bearer token, overrides the stored credential
  MOBCASH_USERS_PATH    Users list endpoint (default /mobcash/users)
  MOBCASH_PAGE_SIZE     Rows per page (default 10)
  MOBCASH_HTTP_TIMEOUT  Request timeout in seconds (default none)
  MOBCASH_HOME          Credential and log directory (default ~/.mobcashctl)
  LOG_LEVEL             debug, info, warn or error

AUTHENTICATION:
  auth        Store, inspect or forget the API token

RESOURCES:
  users       List normal users
  recharges   List recharges or file a new one
  platforms   List, create, update or delete platforms
  upload      Upload an image and print its URL

INTERACTIVE:
  dashboard   Full-screen dashboard with tables, search and the recharge form

OTHER:
  version     Display version information

EXAMPLES:
  mobcashctl auth login --token eyJhbGciOi...
  mobcashctl users list --search alice
  mobcashctl recharges create --amount 200000 --method MOBILE_MONEY --reference TX123 --proof recu.png
  mobcashctl platforms list --enable=true --json
  mobcashctl dashboard
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version works without any configuration
		if cmd.Name() == "version" {
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.LogLevel)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Disable Cobra's automatic "completion" command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Version is set via ldflags, so it is read here rather than at declaration
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("mobcashctl {{.Version}}\n")
}
