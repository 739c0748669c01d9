package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/form"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
)

var (
	rechargesList listFlags

	rechargeAmount    string
	rechargeMethod    string
	rechargeReference string
	rechargeNotes     string
	rechargeProof     string
)

var rechargesCmd = &cobra.Command{
	Use:   "recharges",
	Short: "List balance recharges or file a new one",
}

var rechargesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of recharges",
	Long: `Lists balance recharge requests. The search text matches the payment reference.

Examples:
  mobcashctl recharges list
  mobcashctl recharges list --search TX123 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		filters := models.RechargeFilters{Page: rechargesList.toPage()}
		snap := console.Recharges.Fetch(context.Background(), filters)
		if snap.Err != nil {
			return snap.Err
		}
		page := snap.Data

		switch {
		case rechargesList.quiet:
			for _, r := range page.Results {
				fmt.Println(r.ID)
			}
			return nil
		case rechargesList.json:
			return printJSON(page)
		}

		rows := make([][]string, 0, len(page.Results))
		for _, r := range page.Results {
			rows = append(rows, rechargeRow(r))
		}
		printTable([]string{"ID", "Créé par", "Montant", "Méthode", "Référence", "Preuve", "Date"}, rows)
		printPageFooter(page, filters.Page)
		return nil
	},
}

var rechargesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a balance recharge request",
	Long: `Creates a recharge request. With --proof the image is uploaded first and its
URL attached as the payment proof; a rejected or failed upload stops here.

Payment methods: BANK_TRANSFER, MOBILE_MONEY, OTHER.

Examples:
  mobcashctl recharges create --amount 200000 --method MOBILE_MONEY --reference TX123
  mobcashctl recharges create --amount 5000.50 --method BANK_TRANSFER --reference VIR-42 --proof recu.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		ctx := context.Background()
		f := console.NewRechargeForm()
		f.SetFields(form.RechargeFields{
			Amount:           rechargeAmount,
			PaymentMethod:    rechargeMethod,
			PaymentReference: rechargeReference,
			Notes:            rechargeNotes,
		})

		if rechargeProof != "" {
			url, err := uploadWithProgress(rechargeProof, func(file uploadFile) (string, error) {
				return f.AttachProof(ctx, file)
			})
			if err != nil {
				return reportOutcome(console.Notifier, err)
			}
			fmt.Println("📎 Preuve:", url)
		}

		return reportOutcome(console.Notifier, f.Submit(ctx))
	},
}

func init() {
	rootCmd.AddCommand(rechargesCmd)
	rechargesCmd.AddCommand(rechargesListCmd, rechargesCreateCmd)
	rechargesList.bind(rechargesListCmd)

	rechargesCreateCmd.Flags().StringVarP(&rechargeAmount, "amount", "a", "", "Amount, a positive decimal (required)")
	rechargesCreateCmd.Flags().StringVarP(&rechargeMethod, "method", "m", string(models.PaymentMethodMobileMoney), "Payment method")
	rechargesCreateCmd.Flags().StringVarP(&rechargeReference, "reference", "r", "", "Payment reference (required)")
	rechargesCreateCmd.Flags().StringVarP(&rechargeNotes, "notes", "n", "", "Free-text notes")
	rechargesCreateCmd.Flags().StringVar(&rechargeProof, "proof", "", "Image file to upload as payment proof")
}

func rechargeRow(r models.Recharge) []string {
	proof := "-"
	if r.PaymentProof != nil && *r.PaymentProof != "" {
		proof = "oui"
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		orDash(r.CreatedBy.FullName()),
		models.FormatAmountText(r.Amount),
		r.PaymentMethod.Label(),
		orDash(r.PaymentReference),
		proof,
		formatDate(r.CreatedAt),
	}
}
