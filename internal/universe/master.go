package universe

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/momentum-scanner/pkg/httputil"
	"github.com/wonny/momentum-scanner/pkg/logger"
	"github.com/wonny/momentum-scanner/pkg/redis"
)

// Security is one row of the NSE equity master
type Security struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	ISIN   string `json:"isin"`
	Series string `json:"series"`
}

// ErrNoSymbolColumn means the CSV is not an equity master
var ErrNoSymbolColumn = errors.New("symbol master has no SYMBOL column")

// MasterLoader downloads the NSE equity master (EQUITY_L.csv)
// ⭐ SSOT: NSE 종목 마스터 다운로드는 여기서만
type MasterLoader struct {
	httpClient *httputil.Client
	urls       []string
	cache      *redis.Cache
	logger     *logger.Logger
}

// NewMasterLoader creates a loader trying urls in order. cache may be nil.
func NewMasterLoader(httpClient *httputil.Client, urls []string, cache *redis.Cache, log *logger.Logger) *MasterLoader {
	return &MasterLoader{
		httpClient: httpClient,
		urls:       urls,
		cache:      cache,
		logger:     log.WithModule("universe"),
	}
}

// Load returns the active EQ securities sorted by symbol, from cache when
// possible, otherwise from the first mirror that answers with a usable file
func (l *MasterLoader) Load(ctx context.Context) ([]Security, error) {
	key := redis.SymbolMasterKey("nse")

	if l.cache != nil {
		var cached []Security
		found, err := l.cache.Get(ctx, key, &cached)
		if err != nil {
			l.logger.WithError(err).Warn("Symbol master cache read failed")
			// an entry that cannot be decoded is dropped so a failed refresh does not leave it behind
			if derr := l.cache.Delete(ctx, key); derr != nil {
				l.logger.WithError(derr).Warn("Symbol master cache evict failed")
			}
		} else if found && len(cached) > 0 {
			l.logger.WithField("count", len(cached)).Debug("Symbol master from cache")
			return cached, nil
		}
	}

	return l.Refresh(ctx)
}

// Refresh downloads the master, bypassing the cache, and re-caches it
func (l *MasterLoader) Refresh(ctx context.Context) ([]Security, error) {
	var lastErr error
	for _, url := range l.urls {
		body, err := l.httpClient.GetBody(ctx, url)
		if err != nil {
			lastErr = err
			l.logger.WithError(err).WithField("url", url).Warn("Symbol master download failed")
			continue
		}

		list, err := ParseMaster(bytes.NewReader(body))
		if err != nil {
			lastErr = err
			l.logger.WithError(err).WithField("url", url).Warn("Symbol master parse failed")
			continue
		}

		l.logger.WithFields(map[string]interface{}{
			"url":   url,
			"count": len(list),
		}).Info("Loaded symbol master")

		if l.cache != nil {
			if err := l.cache.Set(ctx, redis.SymbolMasterKey("nse"), list, redis.TTLDaily); err != nil {
				l.logger.WithError(err).Warn("Symbol master cache write failed")
			}
		}
		return list, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no symbol master url configured")
	}
	return nil, fmt.Errorf("could not fetch NSE symbols: %w", lastErr)
}

// ParseMaster reads EQUITY_L.csv, keeping SERIES == EQ and (when present)
// STATUS == ACTIVE. Header names are matched case-insensitively with
// surrounding spaces ignored. Rows are de-duplicated and sorted by symbol.
func ParseMaster(r io.Reader) ([]Security, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read symbol master header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToUpper(strings.Join(strings.Fields(strings.TrimPrefix(h, "\ufeff")), " "))
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	if _, ok := col["SYMBOL"]; !ok {
		return nil, ErrNoSymbolColumn
	}

	field := func(rec []string, name string) (string, bool) {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return "", ok
		}
		return strings.TrimSpace(rec[i]), true
	}

	seen := make(map[Security]bool)
	var out []Security
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read symbol master: %w", err)
		}

		series, hasSeries := field(rec, "SERIES")
		if hasSeries && series != "EQ" {
			continue
		}
		if status, ok := field(rec, "STATUS"); ok && !strings.EqualFold(status, "ACTIVE") {
			continue
		}

		sec := Security{Series: series}
		sec.Symbol, _ = field(rec, "SYMBOL")
		sec.Name, _ = field(rec, "NAME OF COMPANY")
		sec.ISIN, _ = field(rec, "ISIN NUMBER")
		if sec.Symbol == "" || seen[sec] {
			continue
		}
		seen[sec] = true
		out = append(out, sec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Symbols returns the symbols of list in order
func Symbols(list []Security) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Symbol
	}
	return out
}

// Search matches q against symbol or company name, case-insensitively,
// returning at most limit hits in list order
func Search(list []Security, q string, limit int) []Security {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || limit <= 0 {
		return nil
	}

	var hits []Security
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			hits = append(hits, s)
			if len(hits) == limit {
				break
			}
		}
	}
	return hits
}
