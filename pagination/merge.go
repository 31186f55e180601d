// Package pagination merges server pages into ordered, id-unique collections.
package pagination

// Keyed is anything stored in a paginated collection
type Keyed interface {
	Key() string
}

// MergePage folds a fetched page into existing.
//
// Page 0 replaces the collection. Any later page appends the items whose key
// is not present yet. Relative order of both sides is kept and the first
// occurrence of a key wins, including duplicates inside items.
func MergePage[T Keyed](existing []T, page int, items []T) []T {
	if page == 0 {
		return dedupe(items)
	}

	seen := make(map[string]struct{}, len(existing)+len(items))
	merged := make([]T, 0, len(existing)+len(items))
	for _, it := range existing {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		merged = append(merged, it)
	}
	for _, it := range items {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		merged = append(merged, it)
	}
	return merged
}

func dedupe[T Keyed](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		out = append(out, it)
	}
	return out
}

// HasMore prefers the server's hasNext flag and otherwise infers it from the
// page position.
func HasMore(hasNext *bool, itemCount, page, totalPages int) bool {
	if hasNext != nil {
		return *hasNext
	}
	return itemCount > 0 && page < totalPages-1
}
