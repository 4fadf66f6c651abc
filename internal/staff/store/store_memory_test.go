package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/testutil"
)

func TestInMemoryStore_UpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	member := testutil.NewTestMember(testutil.TestIDs.AnalystID, id.RoleAnalyst)
	created := member.CreatedAt
	require.NoError(t, s.Upsert(ctx, member))

	again := testutil.NewTestMember(testutil.TestIDs.AnalystID, id.RoleAdmin)
	again.CreatedAt = created.Add(time.Hour)
	require.NoError(t, s.Upsert(ctx, again))
	assert.Equal(t, created, again.CreatedAt)

	found, err := s.FindByID(ctx, testutil.TestIDs.AnalystID)
	require.NoError(t, err)
	assert.Equal(t, id.RoleAdmin, found.Role)
}

func TestInMemoryStore_EmailUnique(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	first := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	require.NoError(t, s.Upsert(ctx, first))

	second := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	second.Email = first.Email
	assert.ErrorIs(t, s.Upsert(ctx, second), sentinel.ErrAlreadyUsed)

	require.NoError(t, s.Upsert(ctx, testutil.NewTestMember(second.UserID, id.RoleAnalyst)))
	second.Email = first.Email
	assert.ErrorIs(t, s.Update(ctx, second), sentinel.ErrAlreadyUsed)
}

func TestInMemoryStore_UpdateMissing(t *testing.T) {
	s := NewInMemoryStore()
	err := s.Update(context.Background(), testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAdmin))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_ListOrderedByEmail(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for _, email := range []string{"c@portal.test", "a@portal.test", "b@portal.test"} {
		m := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
		m.Email = email
		require.NoError(t, s.Upsert(ctx, m))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a@portal.test", list[0].Email)
	assert.Equal(t, "c@portal.test", list[2].Email)

	list[0].Role = id.RoleSuperAdmin
	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, id.RoleAnalyst, again[0].Role, "returned members must be copies")
}
