package pagination

// OffsetResult is one page of an offset paginated listing.
type OffsetResult[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	HasMore bool  `json:"has_more"`
}

func NewOffsetResult[T any](items []T, total int64, page int, size int) *OffsetResult[T] {
	offset := OffsetRequest{Page: page, Size: size}.Offset()
	hasMore := int64(offset) < total-int64(size)

	return &OffsetResult[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Size:    size,
		HasMore: hasMore,
	}
}

// Paginate cuts the requested page out of an in-memory listing. req must be
// validated.
func Paginate[T any](all []T, req OffsetRequest) *OffsetResult[T] {
	start := min(req.Offset(), len(all))
	end := start + min(req.Size, len(all)-start)

	items := make([]T, end-start)
	copy(items, all[start:end])
	return NewOffsetResult(items, int64(len(all)), req.Page, req.Size)
}
