package response

import "math"

// Pagination describes one page of a newest-first listing.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination builds the envelope for a page holding count items out of
// total. From and To are 1-based and both 0 for an empty page.
func NewPagination(page, pageSize, count int, total int64) *Pagination {
	from := (page-1)*pageSize + 1
	to := from + count - 1
	if count == 0 {
		from, to = 0, 0
	}
	var totalPages int64
	if pageSize > 0 {
		totalPages = int64(math.Ceil(float64(total) / float64(pageSize)))
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         to,
	}
}
