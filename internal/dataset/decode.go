package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"txdash/internal/core"
)

// Decode reads a JSON array of transactions and validates every record.
func Decode(r io.Reader) ([]core.Transaction, error) {
	var txns []core.Transaction
	if err := json.NewDecoder(r).Decode(&txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d (index %d): %w", t.ID, i, err)
		}
	}
	return txns, nil
}
