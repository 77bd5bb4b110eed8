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

// Package docstore abstracts the hierarchical document store. Documents are
// addressed by slash-separated paths alternating collection and document
// segments, e.g. tenants/{tenantID}/users/{uid}. The store offers atomic
// get/set/update per document; there are no cross-document transactions.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// Domain errors
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is the stored shape of a record.
type Document map[string]any

// Snapshot pairs a document with its ID (the last path segment).
type Snapshot struct {
	ID   string
	Data Document
}

// serverTimestamp is a sentinel resolved to the store's own clock at write
// time, so audit timestamps are server-assigned rather than caller-assigned.
type serverTimestamp struct{}

// ServerTimestamp marks a field for server-side timestamp assignment.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether a field value is the timestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Store defines the document store contract.
type Store interface {
	// Get retrieves the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)

	// Set creates or fully replaces the document at path.
	Set(ctx context.Context, path string, data Document) error

	// Update merges fields into an existing document, or ErrNotFound.
	Update(ctx context.Context, path string, data Document) error

	// Delete removes the document at path. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, path string) error

	// List returns all documents directly under a collection path.
	List(ctx context.Context, collection string) ([]Snapshot, error)
}

// Join builds a path from segments. Segments must not contain slashes.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Leaf returns the document ID portion of a path.
func Leaf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ValidateDocPath checks that a path addresses a document: an even, non-zero
// number of non-empty segments.
func ValidateDocPath(path string) error {
	segs := strings.Split(path, "/")
	if len(segs) == 0 || len(segs)%2 != 0 {
		return ErrInvalidPath
	}
	for _, s := range segs {
		if s == "" {
			return ErrInvalidPath
		}
	}
	return nil
}

// ValidateCollectionPath checks that a path addresses a collection: an odd
// number of non-empty segments.
func ValidateCollectionPath(path string) error {
	segs := strings.Split(path, "/")
	if len(segs)%2 != 1 {
		return ErrInvalidPath
	}
	for _, s := range segs {
		if s == "" {
			return ErrInvalidPath
		}
	}
	return nil
}
