package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// Canonicalize renders an AST back to a deterministic query string. Field
// order is alphabetical regardless of the order filters were supplied in,
// so two logically identical filters always canonicalize to the same
// string (used for cache keys and the parse/canonicalize/parse round
// trip). A (gte, lte) pair on the same field collapses back to a single
// `.between=lo,hi` segment.
func Canonicalize(a *AST) string {
	if a.IsEmpty() {
		return ""
	}
	if a.And != nil {
		return canonicalizeAnd(a.And)
	}
	return canonicalizeNode(a)
}

func canonicalizeAnd(children []*AST) string {
	leaves := make([]*Leaf, 0, len(children))
	var other []string
	for _, c := range children {
		if c.Leaf != nil {
			leaves = append(leaves, c.Leaf)
		} else if !c.IsEmpty() {
			other = append(other, canonicalizeNode(c))
		}
	}

	segments := leavesToSegments(leaves)
	segments = append(segments, other...)
	sort.Strings(segments)
	return strings.Join(segments, "&")
}

// leavesToSegments pairs up (field, gte) + (field, lte) leaves produced
// by a `between` transform back into a single segment.
func leavesToSegments(leaves []*Leaf) []string {
	var gte, lte = map[string]*Leaf{}, map[string]*Leaf{}
	var segments []string

	for _, l := range leaves {
		switch l.Op {
		case OpGte:
			gte[l.Field] = l
		case OpLte:
			lte[l.Field] = l
		default:
			segments = append(segments, canonicalizeLeaf(l))
		}
	}

	for field, lo := range gte {
		if hi, ok := lte[field]; ok {
			segments = append(segments, fmt.Sprintf("%s.between=%s,%s",
				field, lo.Value.String(), hi.Value.String()))
			delete(lte, field)
			continue
		}
		segments = append(segments, canonicalizeLeaf(lo))
	}
	for _, hi := range lte {
		segments = append(segments, canonicalizeLeaf(hi))
	}
	return segments
}

func canonicalizeLeaf(l *Leaf) string {
	opName := string(l.Op)
	if opName == "eq" {
		return fmt.Sprintf("%s=%s", l.Field, url.QueryEscape(valueToQueryString(l.Value)))
	}
	if l.Op == OpIn || l.Op == OpNin {
		items, _ := l.Value.AsList()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return fmt.Sprintf("%s.%s=%s", l.Field, opName, strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s.%s=%s", l.Field, opName, url.QueryEscape(valueToQueryString(l.Value)))
}

func valueToQueryString(v schema.Value) string { return v.String() }

func canonicalizeNode(a *AST) string {
	switch {
	case a.Leaf != nil:
		return canonicalizeLeaf(a.Leaf)
	case a.And != nil:
		return "$and(" + canonicalizeAnd(a.And) + ")"
	case a.Or != nil:
		parts := make([]string, len(a.Or))
		for i, c := range a.Or {
			parts[i] = canonicalizeNode(c)
		}
		sort.Strings(parts)
		return "$or(" + strings.Join(parts, "|") + ")"
	case a.Not != nil:
		return "$not(" + canonicalizeNode(a.Not) + ")"
	case a.Nor != nil:
		parts := make([]string, len(a.Nor))
		for i, c := range a.Nor {
			parts[i] = canonicalizeNode(c)
		}
		sort.Strings(parts)
		return "$nor(" + strings.Join(parts, "|") + ")"
	}
	return ""
}
