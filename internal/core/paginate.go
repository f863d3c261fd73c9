package core

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Paginate returns the items at zero-based offsets [(page-1)*perPage, page*perPage).
// A page past the end yields an empty, non-nil slice. page and perPage below 1
// are treated as 1.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if len(items) == 0 || page-1 > (len(items)-1)/perPage {
		return []T{}
	}
	// page-1 is bounded by the item count here, so the product cannot overflow.
	start := (page - 1) * perPage
	end := len(items)
	if perPage < end-start {
		end = start + perPage
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// TotalPages returns how many pages of perPage items cover total items.
func TotalPages(total, perPage int) int {
	if perPage < 1 || total <= 0 {
		return 0
	}
	return (total-1)/perPage + 1
}
