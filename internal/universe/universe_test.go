package universe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum-scanner/pkg/config"
	"github.com/wonny/momentum-scanner/pkg/httputil"
	"github.com/wonny/momentum-scanner/pkg/logger"
	"github.com/wonny/momentum-scanner/pkg/redis"
)

const masterCSV = "SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING, PAID UP VALUE, MARKET LOT, ISIN NUMBER, FACE VALUE\n" +
	"TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1\n" +
	"20MICRONS,20 Microns Limited,EQ,06-OCT-2008,5,1,INE144J01027,5\n" +
	"GOLDBEES,Nippon India ETF Gold BeES,BE,19-MAR-2007,1,1,INF204KB17I5,1\n" +
	"INFY,Infosys Limited,EQ,08-FEB-1995,5,1,INE009A01021,5\n" +
	"TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1\n"

func TestDefault(t *testing.T) {
	u := Default()
	assert.Equal(t, len(Nifty50), u.Count())
	assert.True(t, u.Contains("M&M"))
	assert.Equal(t, 0, u.Position("RELIANCE"))
}

func TestParseMaster(t *testing.T) {
	list, err := ParseMaster(strings.NewReader(masterCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"20MICRONS", "INFY", "TCS"}, Symbols(list))
	assert.Equal(t, Security{Symbol: "TCS", Name: "Tata Consultancy Services Limited", ISIN: "INE467B01029", Series: "EQ"}, list[2])
}

func TestParseMaster_StatusColumn(t *testing.T) {
	csv := "symbol,name of company,series,status\n" +
		"AAA,Alpha,EQ,Active\n" +
		"BBB,Beta,EQ,Suspended\n"

	list, err := ParseMaster(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, Symbols(list))
}

func TestParseMaster_NotAMaster(t *testing.T) {
	_, err := ParseMaster(strings.NewReader("<html>blocked</html>\n"))
	assert.ErrorIs(t, err, ErrNoSymbolColumn)
}

func TestSearch(t *testing.T) {
	list, err := ParseMaster(strings.NewReader(masterCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"INFY"}, Symbols(Search(list, "infosys", 20)))
	assert.Equal(t, []string{"TCS"}, Symbols(Search(list, "tcs", 20)))
	assert.Equal(t, []string{"20MICRONS", "INFY"}, Symbols(Search(list, "limited", 2)))
	assert.Empty(t, Search(list, "  ", 20))
	assert.Empty(t, Search(list, "zzz", 20))
}

func newHTTPClient() *httputil.Client {
	return httputil.New(&config.Config{}, logger.Nop()).DisableRetry()
}

func TestMasterLoader_FallsBackToMirror(t *testing.T) {
	var primaryHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/primary" {
			primaryHits.Add(1)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(masterCSV))
	}))
	defer srv.Close()

	loader := NewMasterLoader(newHTTPClient(), []string{srv.URL + "/primary", srv.URL + "/mirror"}, nil, logger.Nop())

	list, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, int32(1), primaryHits.Load())
}

func TestMasterLoader_AllMirrorsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not,a,master\n"))
	}))
	defer srv.Close()

	cache := redis.NewCache(mustDisabledRedis(t), "test")
	loader := NewMasterLoader(newHTTPClient(), []string{srv.URL}, cache, logger.Nop())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSymbolColumn)
}

func TestMasterLoader_EvictsUndecodableCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Host: "localhost", Port: "6379", Enabled: true}})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	rawKey := "universe-test:cache:" + redis.SymbolMasterKey("nse")
	require.NoError(t, client.Redis().Set(ctx, rawKey, "{not json", time.Minute).Err())
	t.Cleanup(func() { client.Redis().Del(ctx, rawKey) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	loader := NewMasterLoader(newHTTPClient(), []string{srv.URL}, redis.NewCache(client, "universe-test"), logger.Nop())
	_, err = loader.Load(ctx)
	require.Error(t, err)

	n, err := client.Redis().Exists(ctx, rawKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "undecodable entry is evicted even when the refresh fails")
}

func mustDisabledRedis(t *testing.T) *redis.Client {
	t.Helper()
	c, err := redis.New(&config.Config{})
	require.NoError(t, err)
	return c
}

type staticMaster struct {
	list []Security
	err  error
}

func (s staticMaster) Load(context.Context) ([]Security, error) {
	return s.list, s.err
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	u, err := Resolve(ctx, SourceNifty50, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, len(Nifty50), u.Count())

	u, err = Resolve(ctx, SourceList, []string{"TCS", "INFY", "TCS"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Count())

	u, err = Resolve(ctx, SourceNSE, nil, staticMaster{list: []Security{{Symbol: "AAA"}, {Symbol: "BBB"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, u.Count())

	_, err = Resolve(ctx, SourceNSE, nil, staticMaster{err: errors.New("down")})
	assert.ErrorContains(t, err, "down")

	_, err = Resolve(ctx, SourceNSE, nil, nil)
	assert.Error(t, err)

	_, err = Resolve(ctx, "bse", nil, nil)
	assert.Error(t, err)
}
