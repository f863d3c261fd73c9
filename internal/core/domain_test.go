package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(id int64, title string, price float64, month time.Month, sold bool, category string) Transaction {
	return Transaction{
		ID:          id,
		Title:       title,
		Description: "desc " + title,
		Price:       price,
		Category:    category,
		Sold:        sold,
		DateOfSale:  time.Date(2022, month, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in   string
		want time.Month
		err  error
	}{
		{"March", time.March, nil},
		{"march", time.March, nil},
		{"DECEMBER", time.December, nil},
		{"January", time.January, nil},
		{"", 0, ErrMissingMonth},
		{"   ", 0, ErrUnknownMonth},
		{" March ", 0, ErrUnknownMonth},
		{"Mar", 0, ErrUnknownMonth},
		{"3", 0, ErrUnknownMonth},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMonth(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMonthNames(t *testing.T) {
	names := MonthNames()
	require.Len(t, names, 12)
	assert.Equal(t, "January", names[0])
	assert.Equal(t, "December", names[11])
}

func TestSaleMonthUsesTimestampOffset(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	tx := Transaction{DateOfSale: time.Date(2021, time.November, 1, 0, 30, 0, 0, ist)}
	// 2021-10-31T19:00Z in UTC, but the record says November.
	assert.Equal(t, time.November, tx.SaleMonth())
}

func TestTransactionValidate(t *testing.T) {
	good := sale(1, "ok", 10, time.March, true, "a")
	require.NoError(t, good.Validate())

	neg := good
	neg.Price = -1
	assert.ErrorIs(t, neg.Validate(), ErrNegativePrice)

	noDate := good
	noDate.DateOfSale = time.Time{}
	assert.ErrorIs(t, noDate.Validate(), ErrZeroSaleDate)
}

func TestPriceString(t *testing.T) {
	cases := map[float64]string{
		19.99:  "19.99",
		100:    "100",
		0:      "0",
		329.85: "329.85",
		44.6:   "44.6",
	}
	for in, want := range cases {
		assert.Equal(t, want, Transaction{Price: in}.PriceString(), "price %v", in)
	}
}

func TestSumPricesIsExact(t *testing.T) {
	txns := []Transaction{{Price: 0.1}, {Price: 0.2}, {Price: 0.3}}
	assert.Equal(t, "0.6", SumPrices(txns).String())
	assert.Equal(t, "0", SumPrices(nil).String())
}
