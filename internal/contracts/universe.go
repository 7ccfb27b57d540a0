package contracts

import "strings"

// Universe is the ordered, de-duplicated list of symbols to scan
// ⭐ SSOT: 스캔 대상 종목 전달
type Universe struct {
	symbols []Symbol
	index   map[Symbol]int
}

// NewUniverse trims and de-duplicates symbols, keeping first-seen order.
// Blank entries are skipped.
func NewUniverse(symbols ...string) *Universe {
	u := &Universe{
		symbols: make([]Symbol, 0, len(symbols)),
		index:   make(map[Symbol]int, len(symbols)),
	}
	for _, raw := range symbols {
		s := Symbol(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if _, seen := u.index[s]; seen {
			continue
		}
		u.index[s] = len(u.symbols)
		u.symbols = append(u.symbols, s)
	}
	return u
}

// Symbols returns a copy of the ordered symbols
func (u *Universe) Symbols() []Symbol {
	out := make([]Symbol, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(s Symbol) bool {
	_, ok := u.index[s]
	return ok
}

// Position returns the first-seen position of s, or -1
func (u *Universe) Position(s Symbol) int {
	if i, ok := u.index[s]; ok {
		return i
	}
	return -1
}

// Count returns the number of symbols
func (u *Universe) Count() int {
	return len(u.symbols)
}
