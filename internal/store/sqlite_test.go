package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingfs/go-llm-catalog/filter"
)

func newTestStore(t *testing.T) *Sqlite {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFilter(id, owner string, vis filter.Visibility, created time.Time) *filter.Filter {
	w := 0.5
	return &filter.Filter{
		ID:         id,
		OwnerID:    owner,
		Name:       "cheap long context",
		Visibility: vis,
		Rules: []filter.RuleClause{
			{Field: "contextWindow", Operator: filter.OpGte, Value: 128000.0, Type: filter.Hard},
			{Field: "inputCost", Operator: filter.OpLt, Value: 1.0, Type: filter.Soft, Weight: &w},
		},
		Version:   1,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCreateAndGetFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, created)
	require.NoError(t, s.CreateFilter(ctx, f))

	got, err := s.GetFilter(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, 1, got.Version)
	assert.Nil(t, got.LastUsedAt)
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "contextWindow", got.Rules[0].Field)
	assert.Equal(t, 128000.0, got.Rules[0].Value)
	require.NotNil(t, got.Rules[1].Weight)
	assert.Equal(t, 0.5, *got.Rules[1].Weight)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestGetFilterNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetFilter(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFilterDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())
	require.NoError(t, s.CreateFilter(ctx, f))
	assert.Error(t, s.CreateFilter(ctx, f))
}

func TestUpdateFilterBumpsVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())
	require.NoError(t, s.CreateFilter(ctx, f))

	f.Name = "renamed"
	require.NoError(t, s.UpdateFilter(ctx, f))
	assert.Equal(t, 2, f.Version)

	got, err := s.GetFilter(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestUpdateFilterVersionConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())
	require.NoError(t, s.CreateFilter(ctx, f))

	stale := *f
	require.NoError(t, s.UpdateFilter(ctx, f))

	err := s.UpdateFilter(ctx, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)

	missing := sampleFilter("nope", "alice", filter.VisibilityPrivate, time.Now())
	assert.ErrorIs(t, s.UpdateFilter(ctx, missing), ErrNotFound)
}

func TestSaveRunRecordsUsage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())
	require.NoError(t, s.CreateFilter(ctx, f))

	first := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	require.NoError(t, s.SaveRun(ctx, &filter.Run{ID: "r1", FilterID: "f1", Filter: *f, EvaluatedAt: first}))
	require.NoError(t, s.SaveRun(ctx, &filter.Run{ID: "r2", FilterID: "f1", Filter: *f, EvaluatedAt: second}))

	got, err := s.GetFilter(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UsageCount)
	require.NotNil(t, got.LastUsedAt)
	assert.True(t, second.Equal(*got.LastUsedAt))
}

func TestSaveRunForMissingFilterRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.SaveRun(ctx, &filter.Run{ID: "r1", FilterID: "missing", EvaluatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := s.ListRuns(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListFiltersVisibility(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	own := sampleFilter("own", "alice", filter.VisibilityPrivate, base)
	hidden := sampleFilter("hidden", "bob", filter.VisibilityPrivate, base.Add(time.Minute))
	team := sampleFilter("team", "bob", filter.VisibilityTeam, base.Add(2*time.Minute))
	team.TeamID = "research"
	otherTeam := sampleFilter("other-team", "bob", filter.VisibilityTeam, base.Add(3*time.Minute))
	otherTeam.TeamID = "sales"
	public := sampleFilter("public", "carol", filter.VisibilityPublic, base.Add(4*time.Minute))
	for _, f := range []*filter.Filter{own, hidden, team, otherTeam, public} {
		require.NoError(t, s.CreateFilter(ctx, f))
	}

	got, err := s.ListFilters(ctx, ListQuery{UserID: "alice", TeamID: "research"})
	require.NoError(t, err)
	var ids []string
	for _, f := range got {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"own", "team", "public"}, ids)

	got, err = s.ListFilters(ctx, ListQuery{UserID: "dave"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "public", got[0].ID)
}

func TestDeleteFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateFilter(ctx, sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())))

	require.NoError(t, s.DeleteFilter(ctx, "f1"))
	_, err := s.GetFilter(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteFilter(ctx, "f1"), ErrNotFound)
}

func TestSaveAndListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	f := sampleFilter("f1", "alice", filter.VisibilityPrivate, time.Now())
	require.NoError(t, s.CreateFilter(ctx, f))
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := &filter.Run{
			ID:          fmt.Sprintf("run-%d", i),
			FilterID:    f.ID,
			Filter:      *f,
			EvaluatedAt: base.Add(time.Duration(i) * time.Hour),
			Total:       2,
			Matched:     i % 2,
			Results: []filter.ModelResult{
				{ModelID: "gpt-4o", Provider: "OpenAI", Name: "GPT-4o", Result: filter.Result{Match: true, Score: 1, Rationale: "ok"}},
			},
		}
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, "f1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "gpt-4o", runs[0].Results[0].ModelID)
	assert.True(t, runs[0].Results[0].Match)
	assert.Equal(t, "cheap long context", runs[0].Filter.Name)

	all, err := s.ListRuns(ctx, "f1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
