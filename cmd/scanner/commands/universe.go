package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum-scanner/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List or search scan universes",
	Long: `Prints a universe's symbols, or searches the NSE equity master by symbol
or company name.

Example:
  go run ./cmd/scanner universe
  go run ./cmd/scanner universe --source nse
  go run ./cmd/scanner universe --search "tata"`,
	RunE: runUniverse,
}

var (
	universeSource string
	universeSearch string
	universeLimit  int
)

func init() {
	rootCmd.AddCommand(universeCmd)

	// Flags
	universeCmd.Flags().StringVar(&universeSource, "source", universeFromConfig, "universe source: config|nifty50|nse")
	universeCmd.Flags().StringVarP(&universeSearch, "search", "s", "", "search the NSE master by symbol or name")
	universeCmd.Flags().IntVar(&universeLimit, "limit", 20, "maximum search results")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if q := strings.TrimSpace(universeSearch); q != "" {
		list, err := a.masterLoader().Load(ctx)
		if err != nil {
			return err
		}
		hits := universe.Search(list, q, universeLimit)
		if len(hits) == 0 {
			PrintWarning(out, fmt.Sprintf("No symbols match %q", q))
			return nil
		}
		for i, s := range hits {
			fmt.Fprintf(out, "%2d. %-12s [%s]  %s\n", i+1, s.Symbol, s.Series, s.Name)
		}
		return nil
	}

	u, err := a.universeFunc(universeSource, a.scan)(ctx)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	symbols := make([]string, 0, u.Count())
	for _, s := range u.Symbols() {
		symbols = append(symbols, string(s))
	}
	fmt.Fprintf(out, "%d symbols\n", u.Count())
	PrintSeparator(out)
	for i := 0; i < len(symbols); i += 8 {
		fmt.Fprintln(out, strings.Join(symbols[i:min(i+8, len(symbols))], "  "))
	}
	return nil
}
