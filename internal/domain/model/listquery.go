package model

// Default list paging values applied when a list screen opens.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// ListQuery is the query sent to a collection endpoint. Page is 1-based.
type ListQuery struct {
	Page    int
	PerPage int
	Keyword string
}

// CacheKey identifies one distinct list query whose result may be reused.
type CacheKey struct {
	Resource string
	Page     int
	PerPage  int
	Keyword  string
}

// Query returns the backend query described by the key.
func (k CacheKey) Query() ListQuery {
	return ListQuery{Page: k.Page, PerPage: k.PerPage, Keyword: k.Keyword}
}

// Page is one page of a collection as returned by the backend.
type Page[T any] struct {
	Items []T      `json:"data"`
	Meta  PageMeta `json:"meta"`
}

// PageMeta carries the pagination envelope of a list response.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
