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

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anzenboard/anzenboard/internal/docstore"
)

// DocumentStore implements docstore.Store on a single JSONB table. Paths
// are validated before any query and server timestamps are resolved with
// the application clock just before marshaling.
type DocumentStore struct {
	db  *DB
	now func() time.Time
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db, now: time.Now}
}

// Get retrieves the document at path
func (s *DocumentStore) Get(ctx context.Context, path string) (docstore.Document, error) {
	if err := docstore.ValidateDocPath(path); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.pool.QueryRow(ctx, `
		SELECT doc FROM documents WHERE path = $1
	`, path).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Set creates or fully replaces the document at path
func (s *DocumentStore) Set(ctx context.Context, path string, data docstore.Document) error {
	if err := docstore.ValidateDocPath(path); err != nil {
		return err
	}

	raw, err := s.encode(data)
	if err != nil {
		return err
	}

	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO documents (path, parent, doc, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
	`, path, parentOf(path), raw)
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Update merges fields into an existing document
func (s *DocumentStore) Update(ctx context.Context, path string, data docstore.Document) error {
	if err := docstore.ValidateDocPath(path); err != nil {
		return err
	}

	raw, err := s.encode(data)
	if err != nil {
		return err
	}

	result, err := s.db.pool.Exec(ctx, `
		UPDATE documents SET doc = doc || $2::jsonb, updated_at = NOW()
		WHERE path = $1
	`, path, raw)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes the document at path
func (s *DocumentStore) Delete(ctx context.Context, path string) error {
	if err := docstore.ValidateDocPath(path); err != nil {
		return err
	}

	_, err := s.db.pool.Exec(ctx, `
		DELETE FROM documents WHERE path = $1
	`, path)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// List returns all documents directly under a collection path
func (s *DocumentStore) List(ctx context.Context, collection string) ([]docstore.Snapshot, error) {
	if err := docstore.ValidateCollectionPath(collection); err != nil {
		return nil, err
	}

	rows, err := s.db.pool.Query(ctx, `
		SELECT path, doc FROM documents WHERE parent = $1 ORDER BY path
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var snaps []docstore.Snapshot
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc docstore.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		snaps = append(snaps, docstore.Snapshot{ID: docstore.Leaf(path), Data: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return snaps, nil
}

// encode resolves server timestamp sentinels and marshals to JSONB.
func (s *DocumentStore) encode(data docstore.Document) ([]byte, error) {
	now := s.now().UTC()
	resolved := make(docstore.Document, len(data))
	for k, v := range data {
		if docstore.IsServerTimestamp(v) {
			resolved[k] = now.Format(time.RFC3339Nano)
			continue
		}
		resolved[k] = v
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

func parentOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}
