package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askmygarmin/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.Message{Role: domain.RoleUser, Content: "how did I sleep?"}))
	require.NoError(t, store.Append(ctx, domain.Message{
		Role:       domain.RoleAssistant,
		Content:    "You slept 7h 20m.",
		Annotation: "[saved: sleep_goal]",
	}))

	msgs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "how did I sleep?", msgs[0].Content)
	assert.NotEmpty(t, msgs[0].ID, "zero-ID messages get a generated ULID")

	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "[saved: sleep_goal]", msgs[1].Annotation)
	assert.False(t, msgs[1].Timestamp.IsZero())
}

func TestListPreservesInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		msg := domain.Message{
			ID:        NewID(base.Add(time.Duration(i) * time.Millisecond)),
			Role:      domain.RoleUser,
			Content:   content,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, store.Append(ctx, msg))
	}

	msgs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.Message{Role: domain.RoleUser, Content: "x"}))
	require.NoError(t, store.Clear(ctx))

	msgs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestNewIDSortsByTime(t *testing.T) {
	early := NewID(time.Unix(1000, 0))
	late := NewID(time.Unix(2000, 0))
	assert.Less(t, early, late)
}
