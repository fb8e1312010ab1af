package common

// PaginationInput exposes the pagination parameters of a query input.
type PaginationInput interface {
	GetPageNum() int
	GetPageSize() int
}

// BasePaginationInput is embedded by paginated query inputs.
type BasePaginationInput struct {
	PageNum  int `query:"pageNum" default:"1" doc:"Page number, starting at 1"`
	PageSize int `query:"pageSize" default:"10" doc:"Items per page"`
}

// GetPageNum implements PaginationInput.
func (p *BasePaginationInput) GetPageNum() int {
	if p.PageNum <= 0 {
		return 1
	}
	return p.PageNum
}

// GetPageSize implements PaginationInput.
func (p *BasePaginationInput) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	return p.PageSize
}

// BaseSearchPaginationInput adds a free-text keyword to pagination.
type BaseSearchPaginationInput struct {
	BasePaginationInput
	SearchKeyword string `query:"search" doc:"Search keyword"`
}

// GetSearchKeyword returns the keyword.
func (p *BaseSearchPaginationInput) GetSearchKeyword() string {
	return p.SearchKeyword
}

// PaginationInfo describes one page of results.
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" doc:"Current page number"`
	PageSize    int   `json:"pageSize" doc:"Items per page"`
	TotalItems  int64 `json:"totalItems" doc:"Total item count"`
	TotalPages  int   `json:"totalPages" doc:"Total page count"`
}

// NewPaginationInfo builds pagination metadata.
func NewPaginationInfo(pageNum, pageSize int, totalItems int64) PaginationInfo {
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return PaginationInfo{
		CurrentPage: pageNum,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
	}
}

// CalculateOffset converts page number and size to a skip count.
func CalculateOffset(pageNum, pageSize int) int {
	return (pageNum - 1) * pageSize
}
