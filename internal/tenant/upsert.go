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

package tenant

import (
	"context"
	"errors"

	"github.com/anzenboard/anzenboard/internal/docstore"
)

// Upsert writes fields to the document at path, stamping audit fields with
// the acting identity. An absent document gets all four audit fields; an
// existing one gets only the update pair, preserving its creation audit.
// Timestamps are assigned by the store, not by this process.
//
// Upsert is atomic per document only. Callers writing a profile/assignment
// pair get two independent writes; a crash between them leaves an orphaned
// document that must be reconciled manually.
func Upsert(ctx context.Context, store docstore.Store, path string, fields docstore.Document, actorUID string) error {
	doc := make(docstore.Document, len(fields)+4)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldUpdatedAt] = docstore.ServerTimestamp
	doc[FieldUpdatedBy] = actorUID

	_, err := store.Get(ctx, path)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		doc[FieldCreatedAt] = docstore.ServerTimestamp
		doc[FieldCreatedBy] = actorUID
		return store.Set(ctx, path, doc)
	case err != nil:
		return err
	default:
		return store.Update(ctx, path, doc)
	}
}
