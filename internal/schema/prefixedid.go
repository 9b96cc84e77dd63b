package schema

import "strings"

// SplitPrefixedID splits a prefixed id ("contact_abc123") into its
// lowercase prefix and opaque body on the first underscore (spec §4.2).
// Returns ok=false if there is no underscore.
func SplitPrefixedID(id string) (prefix, body string, ok bool) {
	idx := strings.IndexByte(id, '_')
	if idx < 0 {
		return "", "", false
	}
	return id[:idx], id[idx+1:], true
}

// BuildPrefixedID joins a model's singular name with an opaque body.
func BuildPrefixedID(model *ParsedModel, body string) string {
	return model.Singular + "_" + body
}
