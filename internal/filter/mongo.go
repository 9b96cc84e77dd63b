package filter

import (
	"fmt"
	"sort"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// mongoOps maps a "$op" key inside a field block to its operator.
var mongoOps = map[string]Op{
	"$eq": OpEq, "$ne": OpNe, "$gt": OpGt, "$gte": OpGte,
	"$lt": OpLt, "$lte": OpLte, "$in": OpIn, "$nin": OpNin,
	"$regex": OpRegex, "$exists": OpExists,
}

// FromMongo converts a Mongo-style filter document — the surface form
// accepted in a search call's body (spec §4.3 step 5) — into the
// canonical AST. Supported shapes:
//
//	{field: value}                      -> eq leaf
//	{field: {"$gt": 10, "$lte": 50}}    -> one leaf per operator
//	{"$and"/"$or"/"$nor": [subdocs]}    -> logical node
//	{"$not": subdoc}                    -> negation
//
// A nil or empty document yields the match-everything AST. An unknown
// "$" key is an error, never a silent pass.
func FromMongo(doc map[string]any) (*AST, error) {
	if len(doc) == 0 {
		return &AST{}, nil
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var children []*AST
	for _, key := range keys {
		raw := doc[key]
		switch key {
		case "$and", "$or", "$nor":
			subs, err := mongoList(key, raw)
			if err != nil {
				return nil, err
			}
			switch key {
			case "$and":
				children = append(children, AndNode(subs...))
			case "$or":
				children = append(children, OrNode(subs...))
			case "$nor":
				children = append(children, NorNode(subs...))
			}
		case "$not":
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("filter: $not requires an object, got %T", raw)
			}
			child, err := FromMongo(sub)
			if err != nil {
				return nil, err
			}
			children = append(children, NotNode(child))
		default:
			if len(key) > 0 && key[0] == '$' {
				return nil, fmt.Errorf("filter: unknown operator %q", key)
			}
			leaves, err := mongoField(key, raw)
			if err != nil {
				return nil, err
			}
			children = append(children, leaves...)
		}
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return AndNode(children...), nil
}

func mongoList(op string, raw any) ([]*AST, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("filter: %s requires an array, got %T", op, raw)
	}
	subs := make([]*AST, 0, len(list))
	for _, item := range list {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filter: %s elements must be objects, got %T", op, item)
		}
		ast, err := FromMongo(sub)
		if err != nil {
			return nil, err
		}
		subs = append(subs, ast)
	}
	return subs, nil
}

// mongoField turns one {field: ...} entry into leaves: a scalar value
// is eq; an object whose keys are all "$" operators produces one leaf
// per operator.
func mongoField(field string, raw any) ([]*AST, error) {
	block, isBlock := raw.(map[string]any)
	if !isBlock || !allOperatorKeys(block) {
		return []*AST{LeafNode(field, OpEq, schema.FromNative(raw))}, nil
	}

	keys := make([]string, 0, len(block))
	for k := range block {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	leaves := make([]*AST, 0, len(keys))
	for _, k := range keys {
		op, ok := mongoOps[k]
		if !ok {
			return nil, fmt.Errorf("filter: unknown operator %q on field %q", k, field)
		}
		leaves = append(leaves, LeafNode(field, op, schema.FromNative(block[k])))
	}
	return leaves, nil
}

func allOperatorKeys(block map[string]any) bool {
	if len(block) == 0 {
		return false
	}
	for k := range block {
		if len(k) == 0 || k[0] != '$' {
			return false
		}
	}
	return true
}
