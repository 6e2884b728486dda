package dto

// PageQuery is bound from the page/page_size query parameters.
type PageQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// Clamp normalizes out-of-range pagination values instead of rejecting them.
func (q *PageQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
}

// Page is the paginated list envelope shared by every list endpoint.
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](data []T, total, page, pageSize int) *Page[T] {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
