package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum-scanner/internal/nse"
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Live NSE price and promoter holding trend",
	Long: `Fetches the live last traded price from the NSE website and, with
--promoter, the promoter holding of the last six quarters and its trend.

Example:
  go run ./cmd/scanner quote RELIANCE
  go run ./cmd/scanner quote TCS --promoter`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

var (
	quotePromoter bool
)

// quoteQuarters is how many quarters of promoter holding are printed
const quoteQuarters = 6

func init() {
	rootCmd.AddCommand(quoteCmd)

	// Flags
	quoteCmd.Flags().BoolVarP(&quotePromoter, "promoter", "p", false, "show promoter holding trend")
}

func runQuote(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	client := nse.NewFromConfig(a.cfg, a.rdb, a.log)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	price, err := client.LastPrice(ctx, symbol)
	if err != nil {
		return err
	}
	PrintHeader(out, symbol, [][2]string{
		{"Last price", fmt.Sprintf("₹%.2f", price)},
	})

	if !quotePromoter {
		return nil
	}

	holdings, err := client.PromoterHoldings(ctx, symbol)
	if errors.Is(err, nse.ErrNoHoldings) {
		PrintWarning(out, "No promoter data available from NSE")
		return nil
	}
	if err != nil {
		return err
	}

	widths := []int{14, 10}
	PrintTableHeader(out, []string{"Quarter", "Promoter %"}, widths)
	for _, q := range nse.Recent(holdings, quoteQuarters) {
		PrintTableRow(out, []string{q.Quarter, fmt.Sprintf("%.2f", q.PromoterPct)}, widths)
	}
	PrintSeparator(out)
	fmt.Fprintf(out, "Trend: %s\n", nse.PromoterTrend(holdings))
	return nil
}
