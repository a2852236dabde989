package search

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination describes a 1-based page of limit rows out of total.
func NewPagination(page, limit int, total int64) Pagination {
	var pages int
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

func (p Pagination) Skip() int64 {
	if p.Page < 1 {
		return 0
	}

	return int64(p.Page-1) * int64(p.Limit)
}

type Result struct {
	Properties []Listing  `json:"properties"`
	Pagination Pagination `json:"pagination"`
}

// EmptyResult is the page returned when nothing can match c.
func EmptyResult(c Criteria) *Result {
	return &Result{
		Properties: []Listing{},
		Pagination: NewPagination(c.Page, c.Limit, 0),
	}
}
