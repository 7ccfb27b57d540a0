package marketdata

import (
	"context"
	"errors"
)

// ErrMalformedPayload means the provider answered but the body could not be
// read as a chart (undecodable, or an error object in place of data)
var ErrMalformedPayload = errors.New("malformed provider payload")

// Source downloads daily bars for one provider ticker.
// period is a provider range such as "1y" or "2y"; interval is "1d".
// ⭐ SSOT: 외부 시세 공급자 계약
type Source interface {
	DownloadDailyBars(ctx context.Context, ticker, period, interval string, adjustClose bool) (*Frame, error)
}

// ColumnKey is a possibly multi-level column label, outermost level first.
// Single-level frames use one element ("Close"); provider frames that carry
// the ticker use two ("Close", "TCS.NS").
type ColumnKey []string

// Frame is the raw tabular payload returned by a Source. Nothing about it is
// trusted: columns may be missing or duplicated, cells may be nil, strings or
// garbage, and rows may be unsorted.
type Frame struct {
	Index   []string    // date labels, one per row
	Columns []ColumnKey // column labels, one per cell in a row
	Cells   [][]any     // Cells[row][col]
}

// Rows returns the number of rows
func (f *Frame) Rows() int {
	if f == nil {
		return 0
	}
	return len(f.Index)
}

// Empty reports a frame with no rows or no columns
func (f *Frame) Empty() bool {
	return f == nil || len(f.Index) == 0 || len(f.Columns) == 0
}

// Cell returns the cell at (row, col), or nil when the row is short
func (f *Frame) Cell(row, col int) any {
	if row < 0 || row >= len(f.Cells) {
		return nil
	}
	r := f.Cells[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}
