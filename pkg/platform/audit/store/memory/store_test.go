package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "schemeportal/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, audit.Event{Action: "a", SubjectType: "application", SubjectID: "1", Timestamp: base}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: "b", SubjectType: "scheme", SubjectID: "9", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: "c", SubjectType: "application", SubjectID: "1", Timestamp: base.Add(2 * time.Minute)}))

	bySubject, err := store.ListBySubject(ctx, "application", "1")
	require.NoError(t, err)
	require.Len(t, bySubject, 2)
	assert.Equal(t, "c", bySubject[0].Action)

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []string{"c", "b"}, []string{recent[0].Action, recent[1].Action})
}

func TestInMemoryStore_SameTimestampKeepsLatestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, action := range []string{"ai_insight_recorded", "ai_insight_approved"} {
		require.NoError(t, store.Append(ctx, audit.Event{Action: action, SubjectType: "insight", SubjectID: "7", Timestamp: at}))
	}
	require.NoError(t, store.Append(ctx, audit.Event{Action: "scheme_created", SubjectType: "scheme", SubjectID: "3", Timestamp: at}))

	bySubject, err := store.ListBySubject(ctx, "insight", "7")
	require.NoError(t, err)
	require.Len(t, bySubject, 2)
	assert.Equal(t, "ai_insight_approved", bySubject[0].Action)
	assert.Equal(t, "ai_insight_recorded", bySubject[1].Action)

	recent, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"scheme_created", "ai_insight_approved", "ai_insight_recorded"},
		[]string{recent[0].Action, recent[1].Action, recent[2].Action})
}
