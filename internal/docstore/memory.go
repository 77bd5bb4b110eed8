// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by unit tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Get retrieves the document at path.
func (s *MemoryStore) Get(ctx context.Context, path string) (Document, error) {
	if err := ValidateDocPath(path); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

// Set creates or fully replaces the document at path.
func (s *MemoryStore) Set(ctx context.Context, path string, data Document) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = resolveTimestamps(cloneDoc(data), time.Now())
	return nil
}

// Update merges fields into an existing document.
func (s *MemoryStore) Update(ctx context.Context, path string, data Document) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.docs[path]
	if !ok {
		return ErrNotFound
	}
	merged := cloneDoc(existing)
	for k, v := range resolveTimestamps(cloneDoc(data), time.Now()) {
		merged[k] = v
	}
	s.docs[path] = merged
	return nil
}

// Delete removes the document at path.
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

// List returns all documents directly under a collection, ordered by ID.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Snapshot, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	prefix := collection + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []Snapshot
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		// Direct children only, not documents in nested subcollections.
		if strings.ContainsRune(path[len(prefix):], '/') {
			continue
		}
		snaps = append(snaps, Snapshot{ID: Leaf(path), Data: cloneDoc(doc)})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	return snaps, nil
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func resolveTimestamps(doc Document, now time.Time) Document {
	for k, v := range doc {
		if IsServerTimestamp(v) {
			doc[k] = now
		}
	}
	return doc
}
