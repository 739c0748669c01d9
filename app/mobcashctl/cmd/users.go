package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
)

var usersList listFlags

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Browse normal users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of users",
	Long: `Lists normal users, newest first as returned by the server.
The search text matches name, email or phone.

Examples:
  mobcashctl users list
  mobcashctl users list --search alice --page 2
  mobcashctl users list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		filters := models.UserFilters{Page: usersList.toPage()}
		snap := console.Users.Fetch(context.Background(), filters)
		if snap.Err != nil {
			return snap.Err
		}
		page := snap.Data

		switch {
		case usersList.quiet:
			for _, u := range page.Results {
				fmt.Println(u.ID)
			}
			return nil
		case usersList.json:
			return printJSON(page)
		}

		rows := make([][]string, 0, len(page.Results))
		for _, u := range page.Results {
			rows = append(rows, userRow(u))
		}
		printTable([]string{"Nom", "Email", "Téléphone", "Code parrain", "Statut", "Bloqué", "Inscrit le"}, rows)
		printPageFooter(page, filters.Page)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersList.bind(usersListCmd)
}

func userRow(u models.User) []string {
	name := u.FullName()
	if name == "" {
		name = u.Username
	}
	return []string{
		orDash(name),
		orDash(u.Email),
		orDash(u.Phone),
		ptrOrDash(u.ReferralCode),
		u.ActivityLabel(),
		yesNo(u.IsBlock),
		formatDate(u.DateJoined),
	}
}
