package slices

// Subset reports whether every element of a occurs in b. Duplicates are
// ignored.
func Subset[L ~[]E, E comparable](a, b L) bool {
	in := make(map[E]bool, len(b))
	for _, x := range b {
		in[x] = true
	}

	for _, x := range a {
		if !in[x] {
			return false
		}
	}

	return true
}

// SameElements reports whether a and b contain the same elements, ignoring
// order and duplicates.
func SameElements[L ~[]E, E comparable](a, b L) bool {
	return Subset(a, b) && Subset(b, a)
}
