package schema

import (
	"strconv"
	"strings"
)

// RawField is a single DSL field declaration, order-preserving (the
// language's source maps don't preserve iteration order in Go, so
// callers build a RawSchema explicitly instead of handing in a bare
// map[string]map[string]string).
type RawField struct {
	Name string
	Expr string
}

// RawModel is one model's declaration order as written in the schema
// source (config file, JSON array, etc).
type RawModel struct {
	Name   string
	Fields []RawField
}

// RawSchema is the full ordered schema-as-written, the direct input to
// Parse.
type RawSchema []RawModel

// Parse turns a RawSchema into a normalised, resolved ParsedSchema
// (spec §4.1). It validates every model/field identifier, parses every
// field-type expression, synthesises a primary key where needed, and
// runs the relation-resolution pass. It is idempotent and pure.
func Parse(raw RawSchema) (*ParsedSchema, error) {
	out := &ParsedSchema{
		Models: make(map[string]*ParsedModel, len(raw)),
	}

	for _, rm := range raw {
		model, err := parseModel(rm)
		if err != nil {
			return nil, err
		}
		out.Models[model.Name] = model
		out.ModelOrder = append(out.ModelOrder, model.Name)
	}

	if err := resolveRelations(out); err != nil {
		return nil, err
	}

	return out, nil
}

func parseModel(rm RawModel) (*ParsedModel, error) {
	if !isValidIdentifier(rm.Name) {
		return nil, &InvalidIdentifierError{Kind: "model", Value: rm.Name}
	}

	model := &ParsedModel{
		Name:     rm.Name,
		Singular: Singular(rm.Name),
		Plural:   Plural(rm.Name),
		Fields:   make(map[string]*ParsedField, len(rm.Fields)),
	}

	for _, rf := range rm.Fields {
		// Keys starting with `$` are metadata, never fields (spec §3 invariant).
		if strings.HasPrefix(rf.Name, "$") {
			switch rf.Name {
			case "$id":
				model.IDStrategy = strings.TrimSpace(rf.Expr)
			case "$name":
				model.NameField = strings.TrimSpace(rf.Expr)
			}
			continue
		}

		if !isValidIdentifier(rf.Name) {
			return nil, &InvalidIdentifierError{Kind: "field", Value: rf.Name}
		}

		field, err := parseFieldExpr(rf.Name, rf.Expr)
		if err != nil {
			return nil, &ParseError{Model: rm.Name, Field: rf.Name, Expr: rf.Expr, Msg: err.Error()}
		}
		model.Fields[rf.Name] = field
		model.FieldOrder = append(model.FieldOrder, rf.Name)
	}

	detectPrimaryKey(model)
	synthesizeID(model)

	return model, nil
}

// detectPrimaryKey iterates declared fields in order; the first cuid/uuid
// field marked both required and unique becomes the primary key.
// Otherwise "id" is used (and synthesised if absent).
func detectPrimaryKey(model *ParsedModel) {
	for _, name := range model.FieldOrder {
		f := model.Fields[name]
		if (f.Type == TypeCUID || f.Type == TypeUUID) && f.Required && f.Unique {
			model.PrimaryKey = name
			return
		}
	}
	model.PrimaryKey = "id"
}

// synthesizeID adds a required/unique/indexed cuid `id` field when the
// model didn't declare one and no alternate primary key was detected.
func synthesizeID(model *ParsedModel) {
	if model.PrimaryKey != "id" {
		return
	}
	if _, exists := model.Fields["id"]; exists {
		return
	}
	model.Fields["id"] = &ParsedField{
		Name:     "id",
		Type:     TypeCUID,
		Required: true,
		Unique:   true,
		Indexed:  true,
	}
	model.FieldOrder = append([]string{"id"}, model.FieldOrder...)
}

// resolveRelations walks every relation field across every model and
// verifies the target resolves within the schema (spec §4.1 resolution
// pass). It runs once per schema load and is idempotent.
func resolveRelations(s *ParsedSchema) error {
	for _, modelName := range s.ModelOrder {
		model := s.Models[modelName]
		for _, fieldName := range model.FieldOrder {
			f := model.Fields[fieldName]
			if f.Relation == nil {
				continue
			}
			if _, ok := s.Models[f.Relation.Target]; !ok {
				return &UnresolvedRelationError{Model: modelName, Field: fieldName, Target: f.Relation.Target}
			}
		}
	}
	return nil
}

// parseFieldExpr parses a single field-type expression per the grammar
// in spec §4.1:
//
//	field   := core modifiers [ "=" literal ]
//	core    := baseType | arrayType | enumType | decimalType | relation | vectorType
func parseFieldExpr(name, raw string) (*ParsedField, error) {
	expr := strings.TrimSpace(raw)

	core, defaultLit := splitDefault(expr)

	core, mods := stripModifiers(core)
	core = strings.TrimSpace(core)

	field := &ParsedField{Name: name}
	applyModifiers(field, mods)

	if err := parseCore(field, core); err != nil {
		return nil, err
	}

	if defaultLit != "" {
		v, err := parseLiteral(defaultLit)
		if err != nil {
			return nil, err
		}
		field.Default = &v
		// A default value implies required=false (spec §4.1).
		field.Required = false
	}

	// Invariant: inverse relations are never required on input.
	if field.Relation != nil && field.Relation.Type == RelationInverse {
		field.Required = false
	}

	// unique ⇒ indexed; forward relation ⇒ indexed; vector ⇒ indexed.
	if field.Unique {
		field.Indexed = true
	}
	if field.Relation != nil && field.Relation.Type == RelationForward {
		field.Indexed = true
	}
	if field.Vector != nil {
		field.Indexed = true
	}

	return field, nil
}

// splitDefault finds the top-level "=" (outside quotes/parens) that
// separates core+modifiers from a literal default, and returns both
// halves (defaultLit is "" if there is none).
func splitDefault(expr string) (core string, defaultLit string) {
	depth := 0
	inQuote := byte(0)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inQuote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '=':
			if depth == 0 {
				return expr[:i], strings.TrimSpace(expr[i+1:])
			}
		}
	}
	return expr, ""
}

// stripModifiers peels trailing modifier tokens off core, longest-match
// first so "#unique"/"#index" aren't mistaken for a bare "#".
func stripModifiers(core string) (string, modifiers) {
	var mods modifiers
	s := core
	for {
		trimmed := strings.TrimRight(s, " ")
		switch {
		case strings.HasSuffix(trimmed, "#unique"):
			mods.unique = true
			s = strings.TrimSuffix(trimmed, "#unique")
		case strings.HasSuffix(trimmed, "#index"):
			mods.indexed = true
			s = strings.TrimSuffix(trimmed, "#index")
		case strings.HasSuffix(trimmed, "##"):
			mods.unique = true
			mods.indexed = true
			s = strings.TrimSuffix(trimmed, "##")
		case strings.HasSuffix(trimmed, "#"):
			mods.indexed = true
			s = strings.TrimSuffix(trimmed, "#")
		case strings.HasSuffix(trimmed, "!"):
			mods.required = true
			s = strings.TrimSuffix(trimmed, "!")
		case strings.HasSuffix(trimmed, "?"):
			mods.optional = true
			s = strings.TrimSuffix(trimmed, "?")
		default:
			return s, mods
		}
	}
}

type modifiers struct {
	required bool
	optional bool
	unique   bool
	indexed  bool
}

func applyModifiers(f *ParsedField, mods modifiers) {
	if mods.required {
		f.Required = true
	}
	if mods.optional {
		f.Required = false
	}
	if mods.unique {
		f.Unique = true
	}
	if mods.indexed {
		f.Indexed = true
	}
}

// parseCore parses the `core` production and fills in f.Type and its
// associated shape (enum/decimal/relation/vector/array/format).
func parseCore(f *ParsedField, core string) error {
	switch {
	case strings.HasPrefix(core, "->") || strings.HasPrefix(core, "<-"):
		return parseRelation(f, core)
	case strings.HasPrefix(strings.ToLower(core), "vector[") && strings.HasSuffix(core, "]"):
		return parseVector(f, core)
	case strings.HasPrefix(strings.ToLower(core), "decimal(") && strings.HasSuffix(core, ")"):
		return parseDecimal(f, core)
	case strings.HasPrefix(strings.ToLower(core), "enum(") && strings.HasSuffix(core, ")"):
		return parseEnumParen(f, core)
	case strings.Contains(core, "|"):
		return parseEnumPipe(f, core)
	case strings.HasSuffix(core, "[]"):
		base := strings.TrimSuffix(core, "[]")
		f.Array = true
		typ, format := typeForToken(base)
		f.Type = typ
		f.Format = format
		return nil
	default:
		typ, format := typeForToken(core)
		f.Type = typ
		f.Format = format
		return nil
	}
}

func parseRelation(f *ParsedField, core string) error {
	dir := RelationForward
	rest := strings.TrimPrefix(core, "->")
	if strings.HasPrefix(core, "<-") {
		dir = RelationInverse
		rest = strings.TrimPrefix(core, "<-")
	}
	rest = strings.TrimSpace(rest)

	many := false
	if strings.HasSuffix(rest, "[]") {
		many = true
		rest = strings.TrimSuffix(rest, "[]")
	}

	target := rest
	inverseField := ""
	if idx := strings.Index(rest, "."); idx >= 0 {
		target = rest[:idx]
		inverseField = rest[idx+1:]
	}
	target = strings.TrimSpace(target)
	inverseField = strings.TrimSpace(inverseField)

	f.Type = TypeRelation
	f.Relation = &Relation{
		Type:         dir,
		Target:       target,
		Many:         many,
		InverseField: inverseField,
	}
	return nil
}

func parseVector(f *ParsedField, core string) error {
	inner := core[len("vector[") : len(core)-1]
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil || n <= 0 {
		return &ParseError{Expr: core, Msg: "vector dimensions must be a positive integer"}
	}
	f.Type = TypeVector
	f.Vector = &VectorSpec{Dimensions: n}
	return nil
}

func parseDecimal(f *ParsedField, core string) error {
	inner := core[len("decimal(") : len(core)-1]
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return &ParseError{Expr: core, Msg: "decimal requires precision,scale"}
	}
	p, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	s, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return &ParseError{Expr: core, Msg: "decimal precision/scale must be integers"}
	}
	f.Type = TypeNumber
	f.Precision = p
	f.Scale = s
	return nil
}

func parseEnumParen(f *ParsedField, core string) error {
	inner := core[len("enum(") : len(core)-1]
	return setEnum(f, splitCSV(inner))
}

func parseEnumPipe(f *ParsedField, core string) error {
	parts := strings.Split(core, "|")
	return setEnum(f, parts)
}

func setEnum(f *ParsedField, raw []string) error {
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		v = strings.Trim(v, `"'`)
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	f.Type = TypeString
	f.Enum = values
	return nil
}

func splitCSV(s string) []string {
	return strings.Split(s, ",")
}

// typeForToken maps a base-type token (case-insensitive) to its
// normalised FieldType and, where applicable, its wire Format (spec
// §4.1 type token mapping table).
func typeForToken(tok string) (FieldType, Format) {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "string":
		return TypeString, ""
	case "number":
		return TypeNumber, ""
	case "boolean":
		return TypeBoolean, ""
	case "json":
		return TypeJSON, ""
	case "text":
		return TypeText, ""
	case "timestamp":
		return TypeTimestamp, ""
	case "date":
		return TypeDate, ""
	case "cuid":
		return TypeCUID, ""
	case "uuid":
		return TypeUUID, ""
	case "int", "integer", "float":
		return TypeNumber, ""
	case "bool":
		return TypeBoolean, ""
	case "object":
		return TypeJSON, ""
	case "datetime":
		return TypeTimestamp, ""
	case "id":
		return TypeCUID, ""
	case "url":
		return TypeString, FormatURL
	case "email":
		return TypeString, FormatEmail
	case "markdown":
		return TypeString, FormatMarkdown
	case "slug":
		return TypeString, FormatSlug
	default:
		return TypeString, ""
	}
}

// parseLiteral parses a DSL default-value literal: a quoted string, a
// number, true/false, or null.
func parseLiteral(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "null":
		return Null(), nil
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return Str(s[1 : len(s)-1]), nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(n), nil
	}
	// Bare words fall back to a string literal (e.g. enum default without quotes).
	return Str(s), nil
}
