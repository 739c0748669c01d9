package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
)

// listFlags are the flags every list command takes.
type listFlags struct {
	search   string
	page     int
	pageSize int
	json     bool
	quiet    bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Server-side search text")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (default MOBCASH_PAGE_SIZE)")
	cmd.Flags().BoolVarP(&f.json, "json", "j", false, "Return structured output in JSON format")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Return only the IDs, one per line")
}

func (f *listFlags) toPage() models.Page {
	size := f.pageSize
	if size <= 0 {
		size = cfg.PageSize
	}
	return models.Page{Page: f.page, PageSize: size, Search: strings.TrimSpace(f.search)}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error generating JSON output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Println(t.Render())
}

// printPageFooter prints "Page p/last" with the total and the navigation hint.
func printPageFooter[T any](res models.PagedResult[T], page models.Page) {
	last := models.LastPage(res.Count, page.PageSize)
	current := page.Page
	if current < 1 {
		current = 1
	}
	if last == 0 {
		fmt.Println("Aucun résultat")
		return
	}

	var hint []string
	if res.HasPrevious() {
		hint = append(hint, fmt.Sprintf("--page %d for the previous page", current-1))
	}
	if res.HasNext() {
		hint = append(hint, fmt.Sprintf("--page %d for the next page", current+1))
	}

	line := fmt.Sprintf("Page %d/%d, %d results", current, last, res.Count)
	if len(hint) > 0 {
		line += " (" + strings.Join(hint, ", ") + ")"
	}
	fmt.Println(line)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func ptrOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func formatDate(t models.Timestamp) string {
	return t.Display("02/01/2006 15:04")
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
