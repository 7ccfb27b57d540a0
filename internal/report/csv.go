package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// Header is the CSV column order
var Header = []string{"symbol", "last_close", "ret_6m_pct", "below_high_pct", "sma50", "sma200", "rsi14", "momentum_ok"}

// DefaultPlaces is the number of decimals written for every metric
const DefaultPlaces = 4

// WriteCSV writes records, in the given order, as fixed-point decimals
func WriteCSV(w io.Writer, records []contracts.MetricRecord, places int32) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			string(rec.Symbol()),
			fixed(rec.LastClose(), places),
			fixed(rec.Return6MPct(), places),
			fixed(rec.BelowHighPct(), places),
			fixed(rec.SMA50(), places),
			fixed(rec.SMA200(), places),
			fixed(rec.RSI14(), places),
			strconv.FormatBool(rec.MomentumOK()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.Symbol(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the ranked table to path, replacing any existing file
func WriteCSVFile(path string, records []contracts.MetricRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteCSV(f, records, DefaultPlaces); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}
