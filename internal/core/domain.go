package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Transaction is one sale record as published by the dataset source.
	Transaction struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		Category    string    `json:"category"`
		Image       string    `json:"image,omitempty"`
		Sold        bool      `json:"sold"`
		DateOfSale  time.Time `json:"dateOfSale"`
	}

	// Criteria selects transactions for a month, optionally narrowed by a search term.
	Criteria struct {
		Month  time.Month
		Search string
	}
)

var (
	ErrMissingMonth  = errors.New("month is required")
	ErrUnknownMonth  = errors.New("unknown month name")
	ErrNegativePrice = errors.New("negative price")
	ErrZeroSaleDate  = errors.New("missing date of sale")
)

// SaleMonth returns the calendar month of the sale in the timestamp's own offset.
func (t Transaction) SaleMonth() time.Month {
	return t.DateOfSale.Month()
}

// Validate checks the invariants a source must uphold for every record.
func (t Transaction) Validate() error {
	if t.Price < 0 {
		return ErrNegativePrice
	}
	if t.DateOfSale.IsZero() {
		return ErrZeroSaleDate
	}
	return nil
}

// ParseMonth resolves a full English month name, ignoring case. Surrounding
// spaces are not stripped, so " March " is unknown.
func ParseMonth(name string) (time.Month, error) {
	if name == "" {
		return 0, ErrMissingMonth
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, ErrUnknownMonth
}

// MonthNames lists the accepted month values in calendar order.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}
