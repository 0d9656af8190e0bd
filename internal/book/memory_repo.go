package book

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo keeps books in process memory, in insertion order. It backs
// local runs without a database and the package tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	docs  map[string]Document
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Insert(_ context.Context, doc Document) (Document, error) {
	out := doc.withoutID()
	id := uuid.NewString()
	out[FieldID] = id

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = out.Clone()
	r.order = append(r.order, id)
	return out, nil
}

func (r *MemoryRepo) Find(_ context.Context, f Filter) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Document{}
	for _, id := range r.order {
		if doc := r.docs[id]; f.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (r *MemoryRepo) FindOne(_ context.Context, f Filter) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.first(f); ok {
		return r.docs[id].Clone(), nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRepo) UpdateByID(_ context.Context, id string, patch Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return nil, ErrNotFound
	}
	return r.merge(id, patch), nil
}

func (r *MemoryRepo) UpdateOne(_ context.Context, f Filter, patch Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.first(f)
	if !ok {
		return nil, ErrNotFound
	}
	return r.merge(id, patch), nil
}

func (r *MemoryRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) Ping(context.Context) error {
	return nil
}

// first returns the id of the earliest inserted match. Callers hold r.mu.
func (r *MemoryRepo) first(f Filter) (string, bool) {
	for _, id := range r.order {
		if f.Match(r.docs[id]) {
			return id, true
		}
	}
	return "", false
}

// merge applies patch to the stored document. Callers hold r.mu for writing.
func (r *MemoryRepo) merge(id string, patch Document) Document {
	doc := r.docs[id]
	for k, v := range patch.withoutID() {
		doc[k] = cloneValue(v)
	}
	return doc.Clone()
}
