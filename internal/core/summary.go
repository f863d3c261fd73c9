package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// PriceBucket is one fixed histogram range. A price p belongs to the first
// bucket whose Upper satisfies p <= Upper; the last bucket is open-ended.
type PriceBucket struct {
	Label string
	Upper float64
}

// PriceBuckets are the histogram ranges, in order.
var PriceBuckets = [...]PriceBucket{
	{Label: "0-100", Upper: 100},
	{Label: "101-200", Upper: 200},
	{Label: "201-300", Upper: 300},
	{Label: "301-400", Upper: 400},
	{Label: "401-500", Upper: 500},
	{Label: "501-600", Upper: 600},
	{Label: "601-700", Upper: 700},
	{Label: "701-800", Upper: 800},
	{Label: "801-900", Upper: 900},
	{Label: "901-above", Upper: math.Inf(1)},
}

// BucketIndex returns the index into PriceBuckets for price.
func BucketIndex(price float64) int {
	for i, b := range PriceBuckets {
		if price <= b.Upper {
			return i
		}
	}
	return len(PriceBuckets) - 1
}

type (
	// Statistics summarizes the sales of a month.
	Statistics struct {
		TotalSales   decimal.Decimal
		TotalSold    int
		TotalNotSold int
	}

	// PriceHistogram holds one count per entry of PriceBuckets.
	PriceHistogram [len(PriceBuckets)]int

	// CategoryDistribution counts transactions per category. Only categories
	// with at least one transaction are present.
	CategoryDistribution map[string]int
)

// Summarize computes the sales total and the sold/unsold counts.
func Summarize(txns []Transaction) Statistics {
	s := Statistics{TotalSales: SumPrices(txns)}
	for _, t := range txns {
		if t.Sold {
			s.TotalSold++
		} else {
			s.TotalNotSold++
		}
	}
	return s
}

// Histogram classifies every price into exactly one bucket.
func Histogram(txns []Transaction) PriceHistogram {
	var h PriceHistogram
	for _, t := range txns {
		h[BucketIndex(t.Price)]++
	}
	return h
}

// Distribution counts transactions per category.
func Distribution(txns []Transaction) CategoryDistribution {
	d := make(CategoryDistribution)
	for _, t := range txns {
		d[t.Category]++
	}
	return d
}

// Total returns the number of transactions counted by the histogram.
func (h PriceHistogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Count returns the count for the bucket with the given label.
func (h PriceHistogram) Count(label string) (int, bool) {
	for i, b := range PriceBuckets {
		if b.Label == label {
			return h[i], true
		}
	}
	return 0, false
}

// MarshalJSON writes the histogram as an object with every bucket label, in
// bucket order.
func (h PriceHistogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range PriceBuckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(b.Label))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(h[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON. Unknown labels are rejected.
func (h *PriceHistogram) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out PriceHistogram
	for label, n := range raw {
		idx := -1
		for i, b := range PriceBuckets {
			if b.Label == label {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("unknown price bucket %q", label)
		}
		out[idx] = n
	}
	*h = out
	return nil
}

// Total returns the number of transactions counted by the distribution.
func (d CategoryDistribution) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

type statisticsJSON struct {
	TotalSales   json.Number `json:"totalSales"`
	TotalSold    int         `json:"totalSold"`
	TotalNotSold int         `json:"totalNotSold"`
}

// MarshalJSON emits totalSales as a JSON number rather than a quoted decimal.
func (s Statistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(statisticsJSON{
		TotalSales:   json.Number(s.TotalSales.String()),
		TotalSold:    s.TotalSold,
		TotalNotSold: s.TotalNotSold,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	var raw statisticsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	total := decimal.Zero
	if raw.TotalSales != "" {
		d, err := decimal.NewFromString(raw.TotalSales.String())
		if err != nil {
			return err
		}
		total = d
	}
	*s = Statistics{TotalSales: total, TotalSold: raw.TotalSold, TotalNotSold: raw.TotalNotSold}
	return nil
}
