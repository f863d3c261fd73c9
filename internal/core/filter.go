package core

import "strings"

// MatchesMonth reports whether the transaction was sold in the given month.
func MatchesMonth(t Transaction, c Criteria) bool {
	return t.SaleMonth() == c.Month
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// title, the description or the decimal string of the price. An empty term
// matches everything.
func MatchesSearch(t Transaction, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term) ||
		strings.Contains(t.PriceString(), term)
}

// Filter returns the transactions matching c, preserving input order.
// The input slice is never modified.
func Filter(txns []Transaction, c Criteria) []Transaction {
	inMonth := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if MatchesMonth(t, c) {
			inMonth = append(inMonth, t)
		}
	}
	return Search(inMonth, c.Search)
}

// Search narrows txns to those matching term, without any month constraint.
func Search(txns []Transaction, term string) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if MatchesSearch(t, term) {
			out = append(out, t)
		}
	}
	return out
}
