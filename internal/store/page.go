package store

// Pagination describes the position of a page within a filtered result set.
// TotalPages is ceil(Total/Limit); HasNext and HasPrev are derived from the
// requested page, so they hold for any non-negative total and positive
// page/limit.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is a single page of a paginated result set.
type Page[T any] struct {
	Data       []T
	Pagination Pagination
}

// NewPage builds a Page from the fetched slice and the total row count of
// the filtered set. A nil data slice is normalized to an empty one so list
// responses always serialize as JSON arrays.
func NewPage[T any](data []T, total, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

// Offset returns the row offset for the given page and limit.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
