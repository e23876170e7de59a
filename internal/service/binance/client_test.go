package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"SentimentOracle/internal/domain/models"
	drepo "SentimentOracle/internal/domain/repository"
	xhttp "SentimentOracle/pkg/http"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKlines = `[
 [1700000900000,"60.10","60.50","59.90","60.25","1000",1700000959999,"0",10,"0","0","0"],
 [1700000000000,"59.00","60.00","58.90","59.75","1200",1700000059999,"0",12,"0","0","0"]
]`

func newTestClient(url string) *Client {
	return New(Config{BaseURL: url, Symbol: "SOLUSDT", Timeout: 2 * time.Second}, nil, nil)
}

func TestFetchPrices_ParsesAndSorts(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{"symbol": q.Get("symbol"), "interval": q.Get("interval"), "limit": q.Get("limit")}
		_, _ = w.Write([]byte(sampleKlines))
	}))
	defer srv.Close()

	tf, _ := drepo.LookupTimeframe("24h")
	series, err := newTestClient(srv.URL).FetchPrices(context.Background(), tf)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"symbol": "SOLUSDT", "interval": "15m", "limit": "96"}, gotQuery)
	require.Len(t, series, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), series[0].OpenTime)
	assert.Equal(t, 59.75, series[0].Close)
	assert.Equal(t, 60.25, series[1].Close)
}

func TestFetchPrices_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	series, err := newTestClient(srv.URL).FetchPrices(context.Background(), drepo.DefaultTimeframe())
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestFetchPrices_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusTeapot, `{"code":-1121,"msg":"Invalid symbol."}`},
		{"malformed json", http.StatusOK, `{not json`},
		{"short row", http.StatusOK, `[[1700000000000,"1","2"]]`},
		{"bad close", http.StatusOK, `[[1700000000000,"1","2","3","abc","5"]]`},
		{"bad open time", http.StatusOK, `[["x","1","2","3","4","5"]]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchPrices(context.Background(), drepo.DefaultTimeframe())
			require.Error(t, err)

			var pfe *models.PriceFetchError
			require.True(t, errors.As(err, &pfe))
			assert.Equal(t, "SOLUSDT", pfe.Symbol)
			assert.Equal(t, "15m", pfe.Interval)
		})
	}
}

func TestFetchPrices_StatusErrorIsUnwrappable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPrices(context.Background(), drepo.DefaultTimeframe())
	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}

func TestFetchPrices_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).FetchPrices(context.Background(), drepo.DefaultTimeframe())
	var pfe *models.PriceFetchError
	assert.True(t, errors.As(err, &pfe))
}

func TestFetchPrices_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL: srv.URL,
		Timeout: time.Second,
		Breaker: BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Minute},
	}, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := c.FetchPrices(context.Background(), drepo.DefaultTimeframe())
		require.Error(t, err)
	}
	_, err := c.FetchPrices(context.Background(), drepo.DefaultTimeframe())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchPrices_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1120,"msg":"Invalid interval."}`))
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL: srv.URL,
		Timeout: time.Second,
		Breaker: BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Minute},
	}, nil, nil)

	for i := 0; i < 4; i++ {
		_, err := c.FetchPrices(context.Background(), drepo.DefaultTimeframe())
		var se *xhttp.StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

func TestBreakerSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"bad request", &xhttp.StatusError{StatusCode: http.StatusBadRequest}, true},
		{"not found", &xhttp.StatusError{StatusCode: http.StatusNotFound}, true},
		{"rate limited", &xhttp.StatusError{StatusCode: http.StatusTooManyRequests}, false},
		{"banned", &xhttp.StatusError{StatusCode: http.StatusTeapot}, false},
		{"server error", &xhttp.StatusError{StatusCode: http.StatusBadGateway}, false},
		{"transport", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, breakerSuccess(tt.err))
		})
	}
}

func TestFetchPrices_DefaultsSymbol(t *testing.T) {
	c := New(Config{}, nil, nil)
	assert.Equal(t, DefaultSymbol, c.Symbol())
}

func TestParseKlines_NumericClose(t *testing.T) {
	series, err := ParseKlines([]byte(`[[1700000000000,1,2,3,4.5,6]]`))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 4.5, series[0].Close)
}
