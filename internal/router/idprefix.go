package router

import (
	"regexp"
	"strings"
)

// idPrefixPattern validates a global id's lowercase prefix segment
// (spec §4.6: `^[a-z][a-z0-9_]*_`).
var idPrefixPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*_`)

// PrefixTable maps a model's singular name to its plural collection
// name, built once from the parsed schema at startup.
type PrefixTable map[string]string

// ResolveCollection splits id on its FIRST underscore and looks the
// prefix up in the table, so an opaque body containing underscores
// ("contact_john_doe") still resolves to "contact". ok is false for an
// unrecognised prefix or an id with no underscore at all (spec §4.6:
// "Unknown prefix => NOT_FOUND with message 'Unknown entity type
// prefix'").
func (t PrefixTable) ResolveCollection(id string) (plural string, ok bool) {
	if !idPrefixPattern.MatchString(id) {
		return "", false
	}
	idx := strings.IndexByte(id, '_')
	plural, ok = t[id[:idx]]
	return plural, ok
}
