package pagination

// Page is one decoded server page. HasNext is nil when the server omitted it.
type Page[T any] struct {
	Items      []T
	Number     int
	HasNext    *bool
	TotalPages int
}

func (p Page[T]) HasMore() bool {
	return HasMore(p.HasNext, len(p.Items), p.Number, p.TotalPages)
}
