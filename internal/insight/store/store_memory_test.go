package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/insight/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/testutil"
)

func TestInMemoryStore_ListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	older := testutil.NewTestInsight(testutil.TestIDs.AnalystID)
	older.CreatedAt = base
	newer := testutil.NewTestInsight(testutil.TestIDs.AnalystID)
	newer.CreatedAt = base.Add(time.Hour)
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))
	assert.ErrorIs(t, s.Create(ctx, older), sentinel.ErrAlreadyUsed)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	approved, err := s.List(ctx, models.StatusApproved)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestInMemoryStore_DecideIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	in := testutil.NewTestInsight(testutil.TestIDs.AnalystID)
	require.NoError(t, s.Create(ctx, in))

	decision := models.Decision{To: models.StatusApproved, By: testutil.TestIDs.AdminID, At: time.Now()}
	decided, err := s.Decide(ctx, in.ID, models.StatusPendingReview, decision)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, testutil.TestIDs.AdminID, *decided.DecidedBy)

	_, err = s.Decide(ctx, in.ID, models.StatusPendingReview, decision)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	_, err = s.Decide(ctx, id.InsightID(uuid.New()), models.StatusPendingReview, decision)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
