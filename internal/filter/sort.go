package filter

import "strings"

// SortKey is one field in a sort specification.
type SortKey struct {
	Field      string
	Descending bool
}

// ParseSort parses a comma-separated sort spec (spec §4.3): each item
// is either "field"/"-field" or "field.asc"/"field.desc". Empty input
// yields no keys.
func ParseSort(raw string) []SortKey {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		switch {
		case strings.HasSuffix(p, ".asc"):
			keys = append(keys, SortKey{Field: strings.TrimSuffix(p, ".asc")})
		case strings.HasSuffix(p, ".desc"):
			keys = append(keys, SortKey{Field: strings.TrimSuffix(p, ".desc"), Descending: true})
		case strings.HasPrefix(p, "-"):
			keys = append(keys, SortKey{Field: p[1:], Descending: true})
		default:
			keys = append(keys, SortKey{Field: strings.TrimPrefix(p, "+")})
		}
	}
	return keys
}

// CanonicalSort renders sort keys back to the canonical
// "field.asc,field.desc" form; parse(canonicalise(O)) reproduces O.
func CanonicalSort(keys []SortKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Descending {
			parts = append(parts, k.Field+".desc")
		} else {
			parts = append(parts, k.Field+".asc")
		}
	}
	return strings.Join(parts, ",")
}
