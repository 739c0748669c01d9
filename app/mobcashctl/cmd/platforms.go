package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/ptr"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

var (
	platformsList   listFlags
	platformsEnable string

	platformCreate platformFlags
	platformUpdate platformFlags
	platformYes    bool
)

// platformFlags are the editable platform fields. Only flags given on the
// command line are applied.
type platformFlags struct {
	name               string
	image              string
	imageFile          string
	enable             bool
	hash               string
	cashdeskid         string
	cashierpass        string
	depositTutoLink    string
	withdrawalTutoLink string
	whyWithdrawalFail  string
	order              int
	city               string
	street             string
	minDeposit         float64
	maxDeposit         float64
	minWithdrawal      float64
	maxWin             float64
	activeForDeposit   bool
	activeForWith      bool
}

func (f *platformFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Platform name")
	fl.StringVar(&f.image, "image", "", "Logo URL")
	fl.StringVar(&f.imageFile, "image-file", "", "Logo file to upload (at most 5 MiB)")
	fl.BoolVar(&f.enable, "enable", true, "Platform enabled")
	fl.StringVar(&f.hash, "hash", "", "Cash desk hash (blank leaves it unset)")
	fl.StringVar(&f.cashdeskid, "cashdeskid", "", "Cash desk ID (blank leaves it unset)")
	fl.StringVar(&f.cashierpass, "cashierpass", "", "Cashier password (blank leaves it unset)")
	fl.StringVar(&f.depositTutoLink, "deposit-tuto-link", "", "Deposit tutorial link")
	fl.StringVar(&f.withdrawalTutoLink, "withdrawal-tuto-link", "", "Withdrawal tutorial link")
	fl.StringVar(&f.whyWithdrawalFail, "why-withdrawal-fail", "", "Withdrawal failure explanation")
	fl.IntVar(&f.order, "order", 0, "Display order")
	fl.StringVar(&f.city, "city", "", "City")
	fl.StringVar(&f.street, "street", "", "Street")
	fl.Float64Var(&f.minDeposit, "min-deposit", models.DefaultMinimunDeposit, "Minimum deposit")
	fl.Float64Var(&f.maxDeposit, "max-deposit", models.DefaultMaxDeposit, "Maximum deposit")
	fl.Float64Var(&f.minWithdrawal, "min-withdrawal", models.DefaultMinimunWith, "Minimum withdrawal")
	fl.Float64Var(&f.maxWin, "max-win", models.DefaultMaxWin, "Maximum win")
	fl.BoolVar(&f.activeForDeposit, "active-for-deposit", false, "Accept deposits")
	fl.BoolVar(&f.activeForWith, "active-for-withdrawal", false, "Accept withdrawals")
}

// apply copies the given flags onto in.
func (f *platformFlags) apply(cmd *cobra.Command, in *models.PlatformInput) {
	p := f.patch(cmd)
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.Name, p.Name)
	set(&in.Image, p.Image)
	if p.Enable != nil {
		in.Enable = *p.Enable
	}
	if p.Hash != nil {
		in.Hash = p.Hash
	}
	if p.Cashdeskid != nil {
		in.Cashdeskid = p.Cashdeskid
	}
	if p.Cashierpass != nil {
		in.Cashierpass = p.Cashierpass
	}
	if p.DepositTutoLink != nil {
		in.DepositTutoLink = p.DepositTutoLink
	}
	if p.WithdrawalTutoLink != nil {
		in.WithdrawalTutoLink = p.WithdrawalTutoLink
	}
	if p.WhyWithdrawalFail != nil {
		in.WhyWithdrawalFail = p.WhyWithdrawalFail
	}
	if p.Order != nil {
		in.Order = p.Order
	}
	if p.City != nil {
		in.City = p.City
	}
	if p.Street != nil {
		in.Street = p.Street
	}
	if p.MinimunDeposit != nil {
		in.MinimunDeposit = *p.MinimunDeposit
	}
	if p.MaxDeposit != nil {
		in.MaxDeposit = *p.MaxDeposit
	}
	if p.MinimunWith != nil {
		in.MinimunWith = *p.MinimunWith
	}
	if p.MaxWin != nil {
		in.MaxWin = *p.MaxWin
	}
	if p.ActiveForDeposit != nil {
		in.ActiveForDeposit = *p.ActiveForDeposit
	}
	if p.ActiveForWith != nil {
		in.ActiveForWith = *p.ActiveForWith
	}
}

// patch returns a partial update holding only the given flags.
func (f *platformFlags) patch(cmd *cobra.Command) models.PlatformPatch {
	changed := cmd.Flags().Changed
	var p models.PlatformPatch
	if changed("name") {
		p.Name = ptr.To(f.name)
	}
	if changed("image") {
		p.Image = ptr.To(f.image)
	}
	if changed("enable") {
		p.Enable = ptr.To(f.enable)
	}
	if changed("hash") {
		p.Hash = ptr.To(f.hash)
	}
	if changed("cashdeskid") {
		p.Cashdeskid = ptr.To(f.cashdeskid)
	}
	if changed("cashierpass") {
		p.Cashierpass = ptr.To(f.cashierpass)
	}
	if changed("deposit-tuto-link") {
		p.DepositTutoLink = ptr.To(f.depositTutoLink)
	}
	if changed("withdrawal-tuto-link") {
		p.WithdrawalTutoLink = ptr.To(f.withdrawalTutoLink)
	}
	if changed("why-withdrawal-fail") {
		p.WhyWithdrawalFail = ptr.To(f.whyWithdrawalFail)
	}
	if changed("order") {
		p.Order = ptr.To(f.order)
	}
	if changed("city") {
		p.City = ptr.To(f.city)
	}
	if changed("street") {
		p.Street = ptr.To(f.street)
	}
	if changed("min-deposit") {
		p.MinimunDeposit = ptr.To(f.minDeposit)
	}
	if changed("max-deposit") {
		p.MaxDeposit = ptr.To(f.maxDeposit)
	}
	if changed("min-withdrawal") {
		p.MinimunWith = ptr.To(f.minWithdrawal)
	}
	if changed("max-win") {
		p.MaxWin = ptr.To(f.maxWin)
	}
	if changed("active-for-deposit") {
		p.ActiveForDeposit = ptr.To(f.activeForDeposit)
	}
	if changed("active-for-withdrawal") {
		p.ActiveForWith = ptr.To(f.activeForWith)
	}
	return p
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Manage betting platforms",
}

var platformsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List platforms",
	Long: `Lists configured platforms. --enable=true or --enable=false restricts the list
to enabled or disabled platforms.

Examples:
  mobcashctl platforms list
  mobcashctl platforms list --enable=true --search bet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		enable, err := parseTriState(platformsEnable)
		if err != nil {
			return err
		}

		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		filters := models.PlatformFilters{Page: platformsList.toPage(), Enable: enable}
		snap := console.Platforms.Fetch(context.Background(), filters)
		if snap.Err != nil {
			return snap.Err
		}
		page := snap.Data

		switch {
		case platformsList.quiet:
			for _, p := range page.Results {
				fmt.Println(p.ID)
			}
			return nil
		case platformsList.json:
			return printJSON(page)
		}

		rows := make([][]string, 0, len(page.Results))
		for _, p := range page.Results {
			rows = append(rows, platformRow(p))
		}
		printTable([]string{"ID", "Nom", "Active", "Dépôt", "Retrait", "Dépôt min/max", "Retrait min / gain max"}, rows)
		printPageFooter(page, filters.Page)
		return nil
	},
}

var platformsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a platform",
	Long: `Creates a platform. A logo is required: give its URL with --image, or a file
with --image-file to upload it first. Blank hash, cashdeskid and cashierpass
are left out of the request.

Examples:
  mobcashctl platforms create --name 1xBet --image-file logo.png --cashdeskid 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		ctx := context.Background()
		f := console.NewPlatformForm()
		in := f.Input()
		platformCreate.apply(cmd, &in)
		f.SetInput(in)

		if platformCreate.imageFile != "" {
			if _, err := uploadWithProgress(platformCreate.imageFile, func(file uploadFile) (string, error) {
				return f.AttachImage(ctx, file)
			}); err != nil {
				return reportOutcome(console.Notifier, err)
			}
		}

		return reportOutcome(console.Notifier, f.Submit(ctx))
	},
}

var platformsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update fields of a platform",
	Long: `Sends only the fields given on the command line.

Examples:
  mobcashctl platforms update 3f2a --enable=false
  mobcashctl platforms update 3f2a --max-deposit 500000 --image-file new-logo.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		ctx := context.Background()
		patch := platformUpdate.patch(cmd)

		if platformUpdate.imageFile != "" {
			url, err := uploadWithProgress(platformUpdate.imageFile, func(file uploadFile) (string, error) {
				return console.Uploads.Upload(ctx, file, resources.UploadPlatformImage)
			})
			if err != nil {
				return reportOutcome(console.Notifier, err)
			}
			patch.Image = ptr.To(url)
		}

		patch = patch.Sanitized()
		if patch.IsEmpty() {
			return errors.New("nothing to update, pass at least one field flag")
		}

		_, err = console.Platforms.Update(ctx, args[0], patch)
		return reportOutcome(console.Notifier, err)
	},
}

var platformsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !platformYes && !confirm(fmt.Sprintf("Supprimer la plateforme %s ? [y/N] ", args[0])) {
			fmt.Println("Annulé")
			return nil
		}

		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		err = console.Platforms.Delete(context.Background(), args[0])
		return reportOutcome(console.Notifier, err)
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
	platformsCmd.AddCommand(platformsListCmd, platformsCreateCmd, platformsUpdateCmd, platformsDeleteCmd)

	platformsList.bind(platformsListCmd)
	platformsListCmd.Flags().StringVar(&platformsEnable, "enable", "", "Only enabled (true) or disabled (false) platforms")

	platformCreate.bind(platformsCreateCmd)
	platformUpdate.bind(platformsUpdateCmd)

	platformsDeleteCmd.Flags().BoolVarP(&platformYes, "yes", "y", false, "Do not ask for confirmation")
}

func parseTriState(s string) (*bool, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("--enable expects true or false, got %q", s)
	}
	return &b, nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

func platformRow(p models.Platform) []string {
	return []string{
		p.ID,
		p.Name,
		yesNo(p.Enable),
		yesNo(p.ActiveForDeposit),
		yesNo(p.ActiveForWith),
		models.FormatAmount(decimalOf(p.MinimunDeposit)) + " / " + models.FormatAmount(decimalOf(p.MaxDeposit)),
		models.FormatAmount(decimalOf(p.MinimunWith)) + " / " + models.FormatAmount(decimalOf(p.MaxWin)),
	}
}
