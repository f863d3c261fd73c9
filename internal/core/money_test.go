package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		sale(1, "a", 10.5, time.March, true, "x"),
		sale(2, "b", 20.25, time.March, false, "x"),
		sale(3, "c", 0, time.March, false, "y"),
	}
	s := Summarize(txns)
	assert.Equal(t, "30.75", s.TotalSales.String())
	assert.Equal(t, 1, s.TotalSold)
	assert.Equal(t, 2, s.TotalNotSold)
	assert.Equal(t, len(txns), s.TotalSold+s.TotalNotSold)

	empty := Summarize(nil)
	assert.True(t, empty.TotalSales.IsZero())
	assert.Zero(t, empty.TotalSold+empty.TotalNotSold)
}

func TestStatisticsJSON(t *testing.T) {
	s := Statistics{TotalSales: decimal.RequireFromString("1234.56"), TotalSold: 3, TotalNotSold: 4}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalSales":1234.56,"totalSold":3,"totalNotSold":4}`, string(b))

	var back Statistics
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, s.TotalSales.Equal(back.TotalSales))
	assert.Equal(t, s.TotalSold, back.TotalSold)
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		price float64
		label string
	}{
		{0, "0-100"},
		{50, "0-100"},
		{100, "0-100"},
		{100.01, "101-200"},
		{150, "101-200"},
		{200, "101-200"},
		{200.5, "201-300"},
		{900, "801-900"},
		{900.01, "901-above"},
		{999, "901-above"},
		{1e9, "901-above"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, PriceBuckets[BucketIndex(tc.price)].Label, "price %v", tc.price)
	}
}

func TestHistogramExample(t *testing.T) {
	txns := []Transaction{
		sale(1, "a", 50, time.March, true, "x"),
		sale(2, "b", 150, time.March, true, "x"),
		sale(3, "c", 999, time.March, true, "x"),
	}
	h := Histogram(txns)
	for _, b := range PriceBuckets {
		n, ok := h.Count(b.Label)
		require.True(t, ok)
		switch b.Label {
		case "0-100", "101-200", "901-above":
			assert.Equal(t, 1, n, b.Label)
		default:
			assert.Equal(t, 0, n, b.Label)
		}
	}
	assert.Equal(t, len(txns), h.Total())

	_, ok := h.Count("nope")
	assert.False(t, ok)
}

func TestHistogramJSONKeepsAllBucketsInOrder(t *testing.T) {
	var h PriceHistogram
	h[0] = 2
	h[9] = 1
	b, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t,
		`{"0-100":2,"101-200":0,"201-300":0,"301-400":0,"401-500":0,"501-600":0,"601-700":0,"701-800":0,"801-900":0,"901-above":1}`,
		string(b))

	var back PriceHistogram
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, h, back)

	assert.Error(t, json.Unmarshal([]byte(`{"1000+":1}`), &back))
}

func TestDistribution(t *testing.T) {
	txns := []Transaction{
		sale(1, "a", 1, time.March, true, "electronics"),
		sale(2, "b", 1, time.March, true, "electronics"),
		sale(3, "c", 1, time.March, true, "jewelery"),
	}
	d := Distribution(txns)
	assert.Equal(t, CategoryDistribution{"electronics": 2, "jewelery": 1}, d)
	assert.Equal(t, len(txns), d.Total())
	_, present := d["men's clothing"]
	assert.False(t, present)

	assert.Empty(t, Distribution(nil))
}
