package schema

// TypeRegistry assigns a small positive integer to each model name
// (spec §4.2). Explicit mappings are respected; implicit assignments
// pick max(existing)+1 in schema iteration order, so the registry is
// stable across restarts for a given schema + explicit-mapping set.
type TypeRegistry struct {
	forward map[string]int
	reverse map[int]string
}

// NewTypeRegistry builds a registry for every model in s, honouring any
// explicit mappings first, then assigning the rest in schema order.
func NewTypeRegistry(s *ParsedSchema, explicit map[string]int) *TypeRegistry {
	r := &TypeRegistry{
		forward: make(map[string]int, len(s.ModelOrder)),
		reverse: make(map[int]string, len(s.ModelOrder)),
	}

	maxAssigned := 0
	for name, num := range explicit {
		if _, ok := s.Models[name]; !ok {
			continue
		}
		r.forward[name] = num
		r.reverse[num] = name
		if num > maxAssigned {
			maxAssigned = num
		}
	}

	for _, name := range s.ModelOrder {
		if _, ok := r.forward[name]; ok {
			continue
		}
		maxAssigned++
		r.forward[name] = maxAssigned
		r.reverse[maxAssigned] = name
	}

	return r
}

// TypeNum returns the numeric type id for a model name, or (0, false).
func (r *TypeRegistry) TypeNum(modelName string) (int, bool) {
	n, ok := r.forward[modelName]
	return n, ok
}

// ModelName returns the model name for a numeric type id, or ("", false).
func (r *TypeRegistry) ModelName(typeNum int) (string, bool) {
	name, ok := r.reverse[typeNum]
	return name, ok
}
