package listing

// Pagination is the server-reported window of the current page
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one fetched page of rows with its pagination metadata
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination derives TotalPages from total and limit and clamps page into
// [1, max(TotalPages, 1)].
func NewPagination(page, limit, total int) Pagination {
	if limit < 1 {
		limit = 1
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + limit - 1) / limit

	page = normalizePage(page)
	if maxPage := max(totalPages, 1); page > maxPage {
		page = maxPage
	}

	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Paginate builds a page from rows and a total count, normalizing the metadata
func Paginate[T any](items []T, q RequestQuery, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}
}
