package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"txdash/internal/core"
)

var requiredColumns = []string{"id", "title", "description", "price", "category", "sold", "dateOfSale"}

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into transactions. Columns are located by header name, case-insensitively;
// "image" is optional. Fully blank rows are skipped.
func parseTransactions(values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return []core.Transaction{}, nil
	}
	headers := toStrings(values[0])
	cols := make(map[string]int, len(requiredColumns)+1)
	var missing []string
	for _, name := range requiredColumns {
		idx := indexOf(headers, name)
		if idx == -1 {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	cols["image"] = indexOf(headers, "image")

	out := make([]core.Transaction, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		t, err := parseRow(row, cols)
		if err != nil {
			// Sheet rows are 1-based and the header occupies row 1.
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseRow(row []string, cols map[string]int) (core.Transaction, error) {
	id, err := strconv.ParseInt(safeGet(row, cols["id"]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid id: %w", err)
	}
	price, err := parsePrice(safeGet(row, cols["price"]))
	if err != nil {
		return core.Transaction{}, err
	}
	sold, err := strconv.ParseBool(strings.ToLower(safeGet(row, cols["sold"])))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid sold flag: %w", err)
	}
	date, err := time.Parse(time.RFC3339, safeGet(row, cols["dateOfSale"]))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid dateOfSale: %w", err)
	}

	t := core.Transaction{
		ID:          id,
		Title:       safeGet(row, cols["title"]),
		Description: safeGet(row, cols["description"]),
		Price:       price,
		Category:    safeGet(row, cols["category"]),
		Image:       safeGet(row, cols["image"]),
		Sold:        sold,
		DateOfSale:  date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// parsePrice accepts plain numbers and sheet-formatted values such as "$1,299.50".
func parsePrice(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if clean == "" {
		return 0, fmt.Errorf("invalid price: empty")
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return f, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
