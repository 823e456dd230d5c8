// Package paginate provides fixed-size windowing over ordered slices.
package paginate

// Window returns items[page*size : min((page+1)*size, len(items))].
// A page past the end, a negative page or a non-positive size yields an empty slice.
// The returned slice shares no backing array with items.
func Window[T any](items []T, page, size int) []T {
	if size <= 0 || page < 0 || page >= PageCount(len(items), size) {
		return []T{}
	}
	start := page * size
	end := min(start+size, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// PageCount returns ceil(n/size), or 0 when there is nothing to page.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	pages := n / size
	if n%size != 0 {
		pages++
	}
	return pages
}

// Page is one window plus the metadata a review table needs to draw its controls.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// NewPage windows items and fills in the page metadata.
func NewPage[T any](items []T, page, size int) Page[T] {
	pages := PageCount(len(items), size)
	return Page[T]{
		Items:      Window(items, page, size),
		Page:       page,
		PageSize:   size,
		Total:      len(items),
		TotalPages: pages,
		HasPrev:    page > 0 && pages > 0,
		HasNext:    page >= 0 && page < pages-1,
	}
}
