package filter

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// regexCache avoids recompiling the same pattern for every document in a
// result set.
var regexCache sync.Map // map[string]*regexp.Regexp

func compileCached(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// Document is anything a field lookup can be performed against. Stores
// hand documents in as map[string]schema.Value (see internal/store).
type Document map[string]schema.Value

// Matches evaluates the AST against doc. A nil or empty AST matches
// everything (spec §3).
func Matches(a *AST, doc Document) (bool, error) {
	if a.IsEmpty() {
		return true, nil
	}

	switch {
	case a.Leaf != nil:
		return matchLeaf(a.Leaf, doc)
	case a.And != nil:
		for _, child := range a.And {
			ok, err := Matches(child, doc)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case a.Or != nil:
		for _, child := range a.Or {
			ok, err := Matches(child, doc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return len(a.Or) == 0, nil
	case a.Not != nil:
		ok, err := Matches(a.Not, doc)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case a.Nor != nil:
		for _, child := range a.Nor {
			ok, err := Matches(child, doc)
			if err != nil {
				return false, err
			}
			if ok {
				return false, nil
			}
		}
		return true, nil
	}
	return true, nil
}

func matchLeaf(l *Leaf, doc Document) (bool, error) {
	actual, present := doc[l.Field]

	if l.Op == OpExists {
		want, _ := l.Value.AsBool()
		return present == want, nil
	}
	if !present {
		// Absent key fails every comparison except exists:false, which is
		// handled above (spec §9 open question resolution in SPEC_FULL.md).
		return false, nil
	}

	switch l.Op {
	case OpEq:
		return valuesEqual(actual, l.Value), nil
	case OpNe:
		return !valuesEqual(actual, l.Value), nil
	case OpGt, OpGte, OpLt, OpLte:
		return compareOrdered(actual, l.Value, l.Op)
	case OpIn:
		return valueInList(actual, l.Value), nil
	case OpNin:
		return !valueInList(actual, l.Value), nil
	case OpRegex:
		pattern, _ := l.Value.AsString()
		re, err := compileCached(pattern)
		if err != nil {
			return false, err
		}
		s, ok := actual.AsString()
		if !ok {
			return false, nil
		}
		return re.MatchString(s), nil
	}
	// Unknown operator is an error, never a silent pass (spec §4.3).
	return false, fmt.Errorf("filter: unknown operator %q", l.Op)
}

// valuesEqual compares two scalar Values. Numbers compare numerically so
// "10" and "10.0" match; everything else compares by canonical string
// form.
func valuesEqual(a, b schema.Value) bool {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			return an == bn
		}
		return false
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return a.String() == b.String()
}

func compareOrdered(actual, target schema.Value, op Op) (bool, error) {
	an, aok := actual.AsNumber()
	tn, tok := target.AsNumber()
	if aok && tok {
		return cmpFloat(an, tn, op), nil
	}
	as, aok := actual.AsString()
	ts, tok := target.AsString()
	if aok && tok {
		return cmpString(as, ts, op), nil
	}
	return false, nil
}

func cmpFloat(a, b float64, op Op) bool {
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	}
	return false
}

func cmpString(a, b string, op Op) bool {
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	}
	return false
}

func valueInList(actual, list schema.Value) bool {
	items, ok := list.AsList()
	if !ok {
		return false
	}
	for _, item := range items {
		if valuesEqual(actual, item) {
			return true
		}
	}
	return false
}
