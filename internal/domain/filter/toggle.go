package filter

import "slices"

// Toggle removes v from set when present and appends it otherwise. set is
// never modified.
func Toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		out := make([]string, 0, len(set)-1)
		out = append(out, set[:i]...)
		return append(out, set[i+1:]...)
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, v)
}

// ToggleSingle implements radio toggling: reselecting the current value
// clears it.
func ToggleSingle(current, v string) string {
	if current == v {
		return ""
	}
	return v
}
