package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// reservedParams are never treated as filter fields (spec §4.3 step 1).
var reservedParams = map[string]bool{
	"page": true, "limit": true, "offset": true, "after": true, "before": true,
	"cursor": true, "array": true, "raw": true, "debug": true, "domains": true,
	"count": true, "distinct": true, "stream": true, "format": true, "depth": true,
	"include": true, "fields": true, "exclude": true, "sort": true, "q": true, "$sort": true,
}

// dotSuffixOps maps a ".op" key suffix to its comparison operator. ".not"
// is an alias for ne (spec §4.3 step 2).
var dotSuffixOps = map[string]Op{
	"eq": OpEq, "ne": OpNe, "not": OpNe, "gt": OpGt, "gte": OpGte,
	"lt": OpLt, "lte": OpLte, "in": OpIn, "nin": OpNin,
	"exists": OpExists,
}

// dotSuffixTransforms lists the suffixes that require a value
// transformation rather than a direct operator (contains/starts/ends/
// between/regex), alongside the ops above.
var dotSuffixTransforms = map[string]bool{
	"contains": true, "starts": true, "ends": true, "between": true, "regex": true,
}

// symbolicOps maps operators as written in the raw query text
// ("amount>10000"), checked longest-first so ">=" isn't read as ">".
var symbolicOps = []struct {
	suffix string
	op     Op
}{
	{"!=", OpNe},
	{">=", OpGte},
	{"<=", OpLte},
	{">", OpGt},
	{"<", OpLt},
	{"~", OpRegex},
}

// trailingOps maps operator punctuation left dangling at the end of a
// key after the query parser consumed the "=" as the pair separator:
// "tier!=Free" arrives as key "tier!" + value "Free", and "price>=25"
// as key "price>" + value "25" — so a lone trailing ">" here means the
// caller wrote ">=".
var trailingOps = []struct {
	suffix string
	op     Op
}{
	{"!=", OpNe},
	{">=", OpGte},
	{"<=", OpLte},
	{"!", OpNe},
	{">", OpGte},
	{"<", OpLte},
	{"~", OpRegex},
}

// ParseResult is the outcome of parsing a request's query parameters.
type ParseResult struct {
	AST     *AST
	Fields  []string // from the `fields` reserved param
	Exclude []string // from the `exclude` reserved param
	SortRaw string   // raw value of `sort`/`$sort`, for the sort parser
}

// ParseQuery parses a URL query string (spec §4.3) into a ParseResult.
// All non-reserved params are ANDed together into a single top-level AST.
func ParseQuery(raw string) (*ParseResult, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("filter: invalid query string: %w", err)
	}
	return ParseValues(values)
}

// ParseValues parses already-decoded url.Values.
func ParseValues(values url.Values) (*ParseResult, error) {
	result := &ParseResult{}
	var leaves []*AST

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vs := values[key]
		if len(vs) == 0 {
			continue
		}
		raw := vs[0]

		if reservedParams[key] {
			switch key {
			case "fields":
				result.Fields = splitCSVTrim(raw)
			case "exclude":
				result.Exclude = splitCSVTrim(raw)
			case "sort", "$sort":
				result.SortRaw = raw
			}
			continue
		}

		// A fully symbolic pair ("amount>10000", "price>=25") often
		// arrives embedded in the key with an empty value, since the
		// operator's "=" (or absence of one) confuses the key=value
		// split. Re-split on the operator itself in that case.
		if raw == "" {
			if field, op, value, ok := detectEmbedded(key); ok {
				built, err := buildLeaves(field, op, "", value)
				if err != nil {
					return nil, err
				}
				leaves = append(leaves, built...)
				continue
			}
		}

		field, op, transform, ok := detectOperator(key)
		if !ok {
			field, op, transform = key, OpEq, ""
		}

		built, err := buildLeaves(field, op, transform, raw)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, built...)
	}

	if len(leaves) == 0 {
		result.AST = &AST{}
		return result, nil
	}
	result.AST = AndNode(leaves...)
	return result, nil
}

// detectEmbedded finds a symbolic operator inside a key that carries
// its whole expression ("price>=25"), longest operator first so ">="
// isn't read as ">". Returns ok=false when no operator is present or
// nothing follows it.
func detectEmbedded(key string) (field string, op Op, value string, ok bool) {
	for _, sym := range symbolicOps {
		idx := strings.Index(key, sym.suffix)
		if idx <= 0 || idx+len(sym.suffix) >= len(key) {
			continue
		}
		return key[:idx], sym.op, key[idx+len(sym.suffix):], true
	}
	return "", "", "", false
}

// detectOperator inspects a query key for a bracket form ("field[$gt]"),
// a dot-suffix form ("field.gt"), or trailing symbolic punctuation
// ("field>="), returning the bare field name, operator, and an optional
// transform name ("contains"/"starts"/"ends"/"between"/"regex") for
// suffixes that need special value handling.
func detectOperator(key string) (field string, op Op, transform string, ok bool) {
	// Bracket form: field[$op]
	if idx := strings.Index(key, "[$"); idx >= 0 && strings.HasSuffix(key, "]") {
		field = key[:idx]
		opName := key[idx+2 : len(key)-1]
		if o, isOp := dotSuffixOps[opName]; isOp {
			return field, o, "", true
		}
		if dotSuffixTransforms[opName] {
			return field, "", opName, true
		}
		if opName == "regex" {
			return field, OpRegex, "regex", true
		}
		return field, OpEq, "", true
	}

	// Dot-suffix form: field.op
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		suffix := key[idx+1:]
		fieldPart := key[:idx]
		if o, isOp := dotSuffixOps[suffix]; isOp {
			return fieldPart, o, "", true
		}
		if dotSuffixTransforms[suffix] {
			return fieldPart, "", suffix, true
		}
	}

	// Symbolic trailing punctuation.
	for _, sym := range trailingOps {
		if strings.HasSuffix(key, sym.suffix) {
			return strings.TrimSuffix(key, sym.suffix), sym.op, "", true
		}
	}

	return key, OpEq, "", false
}

// buildLeaves applies the operator-specific value transform (spec §4.3
// step 3) and returns one or more Leaf ASTs (between produces two).
func buildLeaves(field string, op Op, transform string, raw string) ([]*AST, error) {
	switch transform {
	case "contains":
		pattern := "(?i)" + raw
		return []*AST{LeafNode(field, OpRegex, schema.Str(pattern))}, nil
	case "starts":
		pattern := "^" + raw
		return []*AST{LeafNode(field, OpRegex, schema.Str(pattern))}, nil
	case "ends":
		pattern := regexp.QuoteMeta(raw) + "$"
		return []*AST{LeafNode(field, OpRegex, schema.Str(pattern))}, nil
	case "regex":
		return []*AST{LeafNode(field, OpRegex, schema.Str(raw))}, nil
	case "between":
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("filter: between requires two comma-separated values, got %q", raw)
		}
		lo := coerce(parts[0])
		hi := coerce(parts[1])
		return []*AST{
			LeafNode(field, OpGte, lo),
			LeafNode(field, OpLte, hi),
		}, nil
	}

	switch op {
	case OpIn, OpNin:
		items := splitCSVTrim(raw)
		return []*AST{LeafNode(field, op, coerceList(items))}, nil
	case OpExists:
		return []*AST{LeafNode(field, op, schema.Bool(raw == "true" || raw == "1"))}, nil
	case OpRegex:
		return []*AST{LeafNode(field, op, schema.Str(raw))}, nil
	default:
		// Bare key with no explicit operator: comma-separated values
		// become an implicit `in`; otherwise it's eq (spec §4.3 step 4).
		if op == OpEq && strings.Contains(raw, ",") {
			items := splitCSVTrim(raw)
			return []*AST{LeafNode(field, OpIn, coerceList(items))}, nil
		}
		return []*AST{LeafNode(field, op, coerce(raw))}, nil
	}
}

// coerce applies spec §4.3's value coercion: "true"/"false"/"null" to
// their typed values, a numeric-looking string to a number, else string.
func coerce(raw string) schema.Value {
	switch raw {
	case "true":
		return schema.Bool(true)
	case "false":
		return schema.Bool(false)
	case "null":
		return schema.Null()
	}
	if numericPattern.MatchString(raw) {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return schema.Number(n)
		}
	}
	return schema.Str(raw)
}

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// coerceList coerces a list of raw strings for in/nin: if every element
// coerces to a number, the whole list is numeric; otherwise every
// element remains a string (no mixed lists).
func coerceList(items []string) schema.Value {
	allNumeric := len(items) > 0
	for _, it := range items {
		if !numericPattern.MatchString(it) {
			allNumeric = false
			break
		}
	}

	out := make([]schema.Value, len(items))
	for i, it := range items {
		if allNumeric {
			n, _ := strconv.ParseFloat(it, 64)
			out[i] = schema.Number(n)
		} else {
			out[i] = schema.Str(it)
		}
	}
	return schema.List(out)
}

func splitCSVTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
