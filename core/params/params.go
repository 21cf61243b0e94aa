package params

// QueryParams carries list-endpoint paging parameters
type QueryParams struct {
	Page     int
	PageSize int
}

// NewQueryParams applies defaults and bounds
func NewQueryParams(page, pageSize int) QueryParams {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return QueryParams{Page: page, PageSize: pageSize}
}

func (q QueryParams) Limit() int {
	return q.PageSize
}

func (q QueryParams) Offset() int {
	return (q.Page - 1) * q.PageSize
}
