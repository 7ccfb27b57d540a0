package universe

import (
	"context"
	"fmt"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// Sources accepted by Resolve
const (
	SourceNifty50 = "nifty50"
	SourceNSE     = "nse"
	SourceList    = "list"
)

// MasterSource supplies the exchange symbol master. *MasterLoader implements it.
type MasterSource interface {
	Load(ctx context.Context) ([]Security, error)
}

// Resolve builds the universe for source. symbols is used for SourceList;
// master is only consulted for SourceNSE.
func Resolve(ctx context.Context, source string, symbols []string, master MasterSource) (*contracts.Universe, error) {
	switch source {
	case SourceNifty50, "":
		return Default(), nil
	case SourceList:
		return contracts.NewUniverse(symbols...), nil
	case SourceNSE:
		if master == nil {
			return nil, fmt.Errorf("universe source %q needs a symbol master", source)
		}
		list, err := master.Load(ctx)
		if err != nil {
			return nil, err
		}
		return contracts.NewUniverse(Symbols(list)...), nil
	default:
		return nil, fmt.Errorf("unknown universe source %q", source)
	}
}
