package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emergent-company/gatewayd/internal/filter"
	"github.com/emergent-company/gatewayd/internal/schema"
)

// MemoryStore is an in-process Store keyed by collection name, for
// tests and the `--memory` serve mode. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Document // collection -> id -> doc
	seq  int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Document)}
}

// MemoryStoreFactory hands every tenant its own isolated MemoryStore,
// created lazily on first use.
type MemoryStoreFactory struct {
	mu      sync.Mutex
	tenants map[string]*MemoryStore
}

// NewMemoryStoreFactory returns an empty MemoryStoreFactory.
func NewMemoryStoreFactory() *MemoryStoreFactory {
	return &MemoryStoreFactory{tenants: make(map[string]*MemoryStore)}
}

func (f *MemoryStoreFactory) ForTenant(tenant string) Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.tenants[tenant]
	if !ok {
		s = NewMemoryStore()
		f.tenants[tenant] = s
	}
	return s
}

func (s *MemoryStore) collection(name string) map[string]Document {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]Document)
		s.data[name] = c
	}
	return c
}

func (s *MemoryStore) Find(ctx context.Context, collection string, ast *filter.AST, opts FindOptions) (FindResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Document
	for _, doc := range s.collection(collection) {
		if isSoftDeleted(doc) {
			continue
		}
		ok, err := filter.Matches(ast, doc)
		if err != nil {
			return FindResult{}, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	sortDocuments(matched, opts.Sort)

	total := len(matched)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	page := make([]Document, end-start)
	copy(page, matched[start:end])

	return FindResult{
		Items:   page,
		Total:   total,
		HasMore: (opts.Offset + len(page)) < total,
	}, nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, ast *filter.AST) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, doc := range s.collection(collection) {
		if isSoftDeleted(doc) {
			continue
		}
		ok, err := filter.Matches(ast, doc)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collection(collection)[id]
	if !ok || isSoftDeleted(doc) {
		return nil, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	id, ok := data["id"].AsString()
	if !ok || id == "" {
		id = s.nextID()
	}
	if _, exists := col[id]; exists {
		return nil, ErrConflict
	}

	now := schema.Str(nowISO())
	doc := cloneDocument(data)
	doc["id"] = schema.Str(id)
	doc["version"] = schema.Number(1)
	doc["createdAt"] = now
	doc["updatedAt"] = now

	col[id] = doc
	return cloneDocument(doc), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, set Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	existing, ok := col[id]
	if !ok || isSoftDeleted(existing) {
		return nil, ErrNotFound
	}

	doc := cloneDocument(existing)
	for k, v := range set {
		doc[k] = v
	}
	version, _ := existing["version"].AsNumber()
	doc["version"] = schema.Number(version + 1)
	doc["updatedAt"] = schema.Str(nowISO())

	col[id] = doc
	return cloneDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	doc, ok := col[id]
	if !ok || isSoftDeleted(doc) {
		return 0, nil
	}
	doc["deletedAt"] = schema.Str(nowISO())
	col[id] = doc
	return 1, nil
}

func (s *MemoryStore) nextID() string {
	n := atomic.AddInt64(&s.seq, 1)
	return "mem_" + strconv.FormatInt(n, 10)
}

func isSoftDeleted(doc Document) bool {
	v, ok := doc["deletedAt"]
	return ok && !v.IsNull()
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func sortDocuments(docs []Document, keys []filter.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareValues(docs[i][k.Field], docs[j][k.Field])
			if cmp == 0 {
				continue
			}
			if k.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b schema.Value) int {
	if an, ok := a.AsNumber(); ok {
		if bn, ok := b.AsNumber(); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }
