package shared

// Pagination describes a zero based page for table footers.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 0 {
		page = 0
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 0 }

// HasNext reports whether a further page exists.
func (p Pagination) HasNext() bool { return p.Page+1 < p.TotalPages }

// Prev is the previous page index.
func (p Pagination) Prev() int { return p.Page - 1 }

// Next is the next page index.
func (p Pagination) Next() int { return p.Page + 1 }

// From is the 1-based index of the first row shown.
func (p Pagination) From() int {
	if p.Total == 0 {
		return 0
	}
	return p.Page*p.PerPage + 1
}

// To is the 1-based index of the last row shown.
func (p Pagination) To() int {
	to := (p.Page + 1) * p.PerPage
	if to > p.Total {
		return p.Total
	}
	return to
}
