package models

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageInfo is embedded in every list envelope
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
}

// NewPageInfo derives TotalPages as ceil(total/limit)
func NewPageInfo(page, limit int, total int64) PageInfo {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageInfo{Page: page, Limit: limit, TotalCount: total, TotalPages: pages}
}
