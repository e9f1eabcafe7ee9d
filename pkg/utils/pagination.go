package utils

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps 1-indexed paging parameters to sane values.
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// TotalPages returns ceil(total/pageSize). An empty result set has zero pages.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageBounds returns the [start, end) slice bounds of a page over total items.
// Pages past the end yield start == end.
func PageBounds(total, page, pageSize int) (int, int) {
	if total <= 0 || page < 1 || pageSize <= 0 || page-1 > total/pageSize {
		return total, total
	}
	start := (page - 1) * pageSize
	if start > total {
		return total, total
	}
	end := total
	if total-start > pageSize {
		end = start + pageSize
	}
	return start, end
}

// ClampPage caps page at the first page past the end of total items, so that
// the resulting offset cannot overflow.
func ClampPage(total, page, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize) + 1; page > last {
		return last
	}
	return page
}

// Offset converts a 1-indexed page into a SQL OFFSET. It saturates at
// math.MaxInt instead of wrapping.
func Offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
