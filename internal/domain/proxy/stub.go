package proxy

// Result returns results[i] as a T, or T's zero value when the slot is
// missing, nil or of another type. Typed stubs use it to unpack Invoke.
func Result[T any](results []any, i int) T {
	var zero T
	if i < 0 || i >= len(results) || results[i] == nil {
		return zero
	}
	v, ok := results[i].(T)
	if !ok {
		return zero
	}
	return v
}
