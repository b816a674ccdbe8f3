package scrape

// Strategy produces an optional value. Strategies are composed into ordered
// fallback chains; each runs only if everything before it produced nothing.
type Strategy[T any] func() (T, bool)

// TryInOrder runs strategies in order and returns the first hit.
func TryInOrder[T any](strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
