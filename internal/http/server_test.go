package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdash/internal/core"
	"txdash/internal/dataset"
	"txdash/internal/dataset/memory"
	"txdash/internal/log"
	"txdash/internal/observability"
	"txdash/internal/services"
)

func record(id int64, title string, price float64, month time.Month, sold bool, category string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Title:       title,
		Description: "about " + title,
		Price:       price,
		Category:    category,
		Sold:        sold,
		DateOfSale:  time.Date(2022, month, 3, 9, 0, 0, 0, time.UTC),
	}
}

func fixture() []core.Transaction {
	var out []core.Transaction
	for i := int64(1); i <= 12; i++ {
		out = append(out, record(i, "Item", 50, time.March, i%2 == 0, "electronics"))
	}
	out = append(out,
		record(20, "Blue Shirt", 150, time.March, true, "men's clothing"),
		record(21, "Gold Ring", 999, time.March, false, "jewelery"),
		record(30, "Red Dress", 45.5, time.April, true, "women's clothing"),
	)
	return out
}

type testServer struct {
	*Server
	store   *memory.Store
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	store := memory.New(fixture())
	logger := log.New(log.Config{Output: &bytes.Buffer{}, Level: -8})
	metrics := observability.NewMetrics()
	opts.Logger = logger
	opts.Metrics = metrics
	src := dataset.Instrument("memory", store, metrics)
	srv := NewServer(opts, services.NewQueryService(src, logger))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: store, metrics: metrics}
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rec).Error
}

func TestTransactionsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.get(t, "/api/transactions?month=March")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "14", rec.Header().Get(HeaderTotalCount))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	items := decode[[]core.Transaction](t, rec)
	assert.Len(t, items, 10)
	assert.Equal(t, int64(1), items[0].ID)

	rec = ts.get(t, "/api/transactions?month=march&page=2&perPage=10")
	require.Equal(t, http.StatusOK, rec.Code)
	items = decode[[]core.Transaction](t, rec)
	assert.Len(t, items, 4)
	assert.Equal(t, int64(21), items[3].ID)
}

func TestTransactionsSearch(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.get(t, "/api/transactions?month=March&search=shirt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(HeaderTotalCount))
	items := decode[[]core.Transaction](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, int64(20), items[0].ID)

	rec = ts.get(t, "/api/transactions?month=March&search=999")
	items = decode[[]core.Transaction](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, int64(21), items[0].ID)

	// Red Dress is an April sale.
	rec = ts.get(t, "/api/transactions?month=March&search=dress")
	assert.Equal(t, "0", rec.Header().Get(HeaderTotalCount))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTransactionsBeyondLastPageIsEmpty(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, path := range []string{
		"/api/transactions?month=March&page=50",
		"/api/transactions?month=March&page=4611686018427387905&perPage=4",
	} {
		rec := ts.get(t, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
		assert.Equal(t, "14", rec.Header().Get(HeaderTotalCount), path)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.get(t, "/api/statistics?month=March")
	require.Equal(t, http.StatusOK, rec.Code)
	// 12*50 + 150 + 999
	assert.JSONEq(t, `{"totalSales":1749,"totalSold":7,"totalNotSold":7}`, rec.Body.String())

	rec = ts.get(t, "/api/statistics?month=July")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalSales":0,"totalSold":0,"totalNotSold":0}`, rec.Body.String())
}

func TestBarChartEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.get(t, "/api/bar-chart?month=March")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"0-100":12,"101-200":1,"201-300":0,"301-400":0,"401-500":0,"501-600":0,"601-700":0,"701-800":0,"801-900":0,"901-above":1}`,
		strings.TrimSpace(rec.Body.String()))
}

func TestPieChartEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.get(t, "/api/pie-chart?month=March")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"electronics":12,"men's clothing":1,"jewelery":1}`, rec.Body.String())

	rec = ts.get(t, "/api/pie-chart?month=July")
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestCombinedEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.get(t, "/api/combined?month=March&perPage=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "14", rec.Header().Get(HeaderTotalCount))

	var body struct {
		Transactions []core.Transaction        `json:"transactions"`
		Total        int                       `json:"total"`
		Statistics   core.Statistics           `json:"statistics"`
		BarChart     core.PriceHistogram       `json:"barChart"`
		PieChart     core.CategoryDistribution `json:"pieChart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Transactions, 5)
	assert.Equal(t, 14, body.Total)
	assert.Equal(t, 14, body.Statistics.TotalSold+body.Statistics.TotalNotSold)
	assert.Equal(t, 14, body.BarChart.Total())
	assert.Equal(t, 14, body.PieChart.Total())
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t, Options{})
	cases := []struct {
		target  string
		message string
	}{
		{"/api/transactions", "month is required"},
		{"/api/statistics?month=", "month is required"},
		{"/api/bar-chart?month=Smarch", `invalid month "Smarch": expected a full month name such as March`},
		{"/api/pie-chart?month=3", `invalid month "3": expected a full month name such as March`},
		{"/api/transactions?month=March&page=abc", "page must be a positive integer"},
		{"/api/transactions?month=March&page=0", "page must be at least 1"},
		{"/api/transactions?month=March&perPage=500", "perPage must be at most 100"},
		{"/api/combined?month=March&perPage=-1", "perPage must be at least 1"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := ts.get(t, tc.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, errorMessage(t, rec))
		})
	}

	rec := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `txdash_validation_failures_total{field="month"} 4`)
}

func TestDatasetFailureIsGeneric500(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.store.FailWith(errors.New("upstream exploded: secret detail"))

	cases := map[string]string{
		"/api/transactions?month=March": "Error fetching data",
		"/api/statistics?month=March":   "Error fetching statistics",
		"/api/bar-chart?month=March":    "Error fetching bar chart data",
		"/api/pie-chart?month=March":    "Error fetching pie chart data",
		"/api/combined?month=March":     "Error fetching combined data",
	}
	for target, msg := range cases {
		rec := ts.get(t, target)
		require.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, msg, errorMessage(t, rec), target)
		assert.NotContains(t, rec.Body.String(), "secret")
	}

	ts.store.FailWith(nil)
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/statistics?month=March").Code)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.get(t, "/api/statistics?month=March")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	req.Header.Set("X-Request-ID", "client-abc-123")
	out := httptest.NewRecorder()
	ts.Handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
	assert.Equal(t, "client-abc-123", out.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Options{CORSOrigins: []string{"https://dash.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/api/pie-chart?month=March", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/pie-chart?month=March", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardIsLogged(t *testing.T) {
	for _, tc := range []struct {
		origins []string
		logged  bool
	}{
		{origins: nil, logged: true},
		{origins: []string{"https://dash.example.com", "*"}, logged: true},
		{origins: []string{"https://dash.example.com"}, logged: false},
	} {
		var buf bytes.Buffer
		logger := log.New(log.Config{Output: &buf, Level: -8})
		srv := NewServer(Options{Logger: logger, CORSOrigins: tc.origins}, services.NewQueryService(memory.New(fixture()), logger))
		require.NoError(t, srv.Shutdown(context.Background()))
		assert.Equal(t, tc.logged, strings.Contains(buf.String(), "CORS allows any origin"), "%v", tc.origins)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/transactions?month=March", nil)
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMinute: 2})

	assert.Equal(t, http.StatusOK, ts.get(t, "/api/statistics?month=March").Code)
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/statistics?month=March").Code)

	rec := ts.get(t, "/api/statistics?month=March")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, errorMessage(t, rec), "Rate limit exceeded")

	// Health checks are never limited.
	assert.Equal(t, http.StatusOK, ts.get(t, "/healthz").Code)

	ready := decode[map[string]any](t, ts.get(t, "/readyz"))
	checks := ready["checks"].(map[string]any)
	limiter := checks["rate_limiter"].(map[string]any)
	assert.Equal(t, float64(1), limiter["rejected_total"])
	assert.Equal(t, float64(1), limiter["active_clients"])

	body := ts.get(t, "/metrics").Body.String()
	assert.Contains(t, body, "txdash_rate_limited_total 1")
}

func TestHealthAndReadiness(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = ts.get(t, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[map[string]any](t, rec)
	assert.Equal(t, "ready", ready["status"])
	checks := ready["checks"].(map[string]any)
	assert.NotContains(t, checks, "rate_limiter")
	traffic := checks["http"].(map[string]any)
	assert.GreaterOrEqual(t, traffic["total_requests"].(float64), float64(1))

	require.NoError(t, ts.Shutdown(context.Background()))
	require.NoError(t, ts.Shutdown(context.Background()))

	rec = ts.get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decode[map[string]any](t, rec)["status"])
}

func TestMetricsCountRequestsByRoute(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.get(t, "/api/statistics?month=March")
	ts.get(t, "/nope")

	res := ts.get(t, "/metrics").Result()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `txdash_http_requests_total{code="200",method="GET",route="/api/statistics"} 1`)
	assert.Contains(t, body, `txdash_http_requests_total{code="404",method="GET",route="other"} 1`)
	assert.Contains(t, body, `txdash_dataset_fetch_total{result="ok",source="memory"} 1`)
}
