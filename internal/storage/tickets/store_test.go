package tickets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, CreateParams{CustomerQuery: "Where is my order?"})
	require.NoError(t, err)
	assert.Equal(t, "TKT-00001", first.TicketID)
	assert.Equal(t, StatusOpen, first.Status)
	assert.Equal(t, PriorityMedium, first.Priority)

	second, err := store.Create(ctx, CreateParams{CustomerQuery: "My laptop arrived broken", Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "TKT-00002", second.TicketID)
	assert.Equal(t, PriorityHigh, second.Priority)
}

func TestCreateRejectsInvalidPriority(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(context.Background(), CreateParams{
		CustomerQuery: "Need help",
		Priority:      "critical",
	})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestGetByTicketID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, CreateParams{
		CustomerEmail: "jo@example.com",
		CustomerQuery: "Refund status?",
		Category:      "refund",
	})
	require.NoError(t, err)

	got, err := store.GetByTicketID(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", got.CustomerEmail)
	assert.Equal(t, "refund", got.Category)

	_, err = store.GetByTicketID(ctx, "TKT-99999")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, CreateParams{CustomerQuery: "Broken screen"})
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, created.TicketID, "resolved", "Replacement shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, updated.Status)
	assert.Equal(t, "Replacement shipped", updated.Notes)

	_, err = store.UpdateStatus(ctx, created.TicketID, "reopened", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = store.UpdateStatus(ctx, "TKT-99999", "closed", "")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, CreateParams{CustomerQuery: "Question one"})
	require.NoError(t, err)
	_, err = store.Create(ctx, CreateParams{CustomerQuery: "Question two"})
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, a.TicketID, "closed", "")
	require.NoError(t, err)

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	closed, err := store.List(ctx, "closed", 0)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, a.TicketID, closed[0].TicketID)

	_, err = store.List(ctx, "bogus", 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, CreateParams{CustomerQuery: "Duplicate ticket"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.TicketID))
	assert.ErrorIs(t, store.Delete(ctx, created.TicketID), ErrTicketNotFound)
}

func TestDeleteWhereStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, CreateParams{CustomerQuery: "Old issue"})
	require.NoError(t, err)
	_, err = store.Create(ctx, CreateParams{CustomerQuery: "Active issue"})
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, a.TicketID, "closed", "")
	require.NoError(t, err)

	removed, err := store.DeleteWhereStatus(ctx, "closed")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCountStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, CreateParams{CustomerQuery: "One"})
	require.NoError(t, err)
	_, err = store.Create(ctx, CreateParams{CustomerQuery: "Two"})
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, a.TicketID, "in_progress", "")
	require.NoError(t, err)

	stats, err := store.CountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Open)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(0), stats.Closed)
}
