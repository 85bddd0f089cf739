package fileutil

func DedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// Difference returns the items of a that are not in b, keeping a's order.
func Difference(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, item := range b {
		drop[item] = true
	}
	var out []string
	for _, item := range a {
		if !drop[item] {
			out = append(out, item)
		}
	}
	return out
}
