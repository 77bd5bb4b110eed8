package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Set(ctx, "tenants/t1/users/u1", Document{"name": "Alice", "isActive": true})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc["name"])

	// Update merges; untouched fields survive.
	err = store.Update(ctx, "tenants/t1/users/u1", Document{"name": "Bob"})
	require.NoError(t, err)

	doc, err = store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", doc["name"])
	assert.Equal(t, true, doc["isActive"])

	// Set replaces the whole document.
	err = store.Set(ctx, "tenants/t1/users/u1", Document{"name": "Carol"})
	require.NoError(t, err)

	doc, err = store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)
	_, hasActive := doc["isActive"]
	assert.False(t, hasActive)
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "tenants/t1/users/u1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Update(ctx, "tenants/t1/users/u1", Document{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent document is not an error.
	assert.NoError(t, store.Delete(ctx, "tenants/t1/users/u1"))
}

func TestMemoryStore_ServerTimestampResolution(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	before := time.Now()
	err := store.Set(ctx, "tenants/t1/users/u1", Document{"_createdAt": ServerTimestamp})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)

	created, ok := doc["_createdAt"].(time.Time)
	require.True(t, ok, "sentinel must resolve to a concrete time")
	assert.False(t, created.Before(before))
	assert.False(t, created.After(time.Now()))
}

func TestMemoryStore_ListDirectChildrenOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "tenants/t1/users/u1", Document{"name": "a"}))
	require.NoError(t, store.Set(ctx, "tenants/t1/users/u2", Document{"name": "b"}))
	require.NoError(t, store.Set(ctx, "tenants/t2/users/u3", Document{"name": "c"}))
	// Nested subcollection documents are not direct children.
	require.NoError(t, store.Set(ctx, "tenants/t1/safetyConfirmations/s1/answers/u1", Document{"memo": "x"}))

	snaps, err := store.List(ctx, "tenants/t1/users")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "u1", snaps[0].ID)
	assert.Equal(t, "u2", snaps[1].ID)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "tenants/t1/users/u1", Document{"name": "a"}))

	doc, err := store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)
	doc["name"] = "mutated"

	fresh, err := store.Get(ctx, "tenants/t1/users/u1")
	require.NoError(t, err)
	assert.Equal(t, "a", fresh["name"])
}

func TestPathValidation(t *testing.T) {
	tests := []struct {
		path  string
		doc   bool
		valid bool
	}{
		{"tenants/t1", true, true},
		{"tenants/t1/users/u1", true, true},
		{"tenants", true, false},
		{"tenants/t1/users", true, false},
		{"tenants//users/u1", true, false},
		{"tenants/t1/users", false, true},
		{"tenants", false, true},
		{"tenants/t1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var err error
			if tt.doc {
				err = ValidateDocPath(tt.path)
			} else {
				err = ValidateCollectionPath(tt.path)
			}
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPath)
			}
		})
	}
}

func TestLeaf(t *testing.T) {
	assert.Equal(t, "u1", Leaf("tenants/t1/users/u1"))
	assert.Equal(t, "solo", Leaf("solo"))
}
