package db

type PaginationInfos struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	PageSize    int64 `json:"pageSize"`
}

const DEFAULT_PAGE_SIZE = 20

func GetTotalPages(totalCount int64, limit int64) int64 {
	if limit == 0 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}

// PrepPaginationInfos clamps page and limit to the available documents.
func PrepPaginationInfos(totalCount int64, page int64, limit int64) *PaginationInfos {
	if limit < 1 {
		limit = DEFAULT_PAGE_SIZE
	}
	totalPages := GetTotalPages(totalCount, limit)
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return &PaginationInfos{
		TotalCount:  totalCount,
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    limit,
	}
}
