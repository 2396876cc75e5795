package result

// Pagination describes the position of a page within the full result set.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
}

// NewPagination computes page arithmetic. perPage below 1 is treated as 1.
func NewPagination(page, perPage, total int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage

	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}
