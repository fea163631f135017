package model

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Sort names a whitelisted column and its direction.
type Sort struct {
	Field string
	Desc  bool
}

// PageRequest is a 0-based page index with a page size.
type PageRequest struct {
	Index int
	Size  int
	Sort  Sort
}

// NewPageRequest clamps index to >= 0 and size to 1..MaxPageSize.  A zero
// or negative size falls back to DefaultPageSize.
func NewPageRequest(index, size int) PageRequest {
	if index < 0 {
		index = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Index: index, Size: size}
}

// Offset is the number of rows skipped before this page.
func (r PageRequest) Offset() int { return r.Index * r.Size }

// Page is the paging envelope returned by list endpoints.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage builds the envelope for one page of a result of total rows.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       pages,
		Number:           req.Index,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Index == 0,
		Last:             req.Index+1 >= pages,
		Empty:            len(content) == 0,
	}
}

// MapPage converts the content of a page keeping its paging metadata.
func MapPage[T, U any](p Page[T], f func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, f(v))
	}
	return Page[U]{
		Content:          out,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		Number:           p.Number,
		Size:             p.Size,
		NumberOfElements: p.NumberOfElements,
		First:            p.First,
		Last:             p.Last,
		Empty:            p.Empty,
	}
}
