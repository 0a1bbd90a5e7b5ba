package models

// Page is the paginated list envelope: {data, total}. Total counts every
// matching row, independent of the page size.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// NewPage never returns a nil Data slice so clients always receive [].
func NewPage[T any](data []T, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total}
}
