package cred

// Provider is one strategy in an ordered fallback chain. Generate reports
// ok=false when the strategy is unavailable or produced nothing usable,
// which hands control to the next provider.
type Provider[T any] struct {
	Name     string
	Generate func() (T, bool)
}

// First runs providers strictly in order and returns the first success
// along with the winning provider's name. The chains used here always end
// in a provider that cannot fail, so ok=false only happens with an empty
// or fully exhausted list.
func First[T any](providers []Provider[T]) (T, string, bool) {
	var zero T
	for _, p := range providers {
		if v, ok := p.Generate(); ok {
			return v, p.Name, true
		}
	}
	return zero, "", false
}
