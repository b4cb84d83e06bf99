package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertProject_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")

	p := createTestProject("p1", "u1", "Checkout", testEpoch)
	p.SprintPlan = strPtr("# Sprint 1")

	inserted, err := s.InsertProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted.Seq)

	got, err := s.ProjectByOwner(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, inserted, got)
	assert.JSONEq(t, string(p.TeamConfig), string(got.TeamConfig))
	require.NotNil(t, got.SprintPlan)
	assert.Equal(t, "# Sprint 1", *got.SprintPlan)
	assert.Nil(t, got.RACIChart)
	assert.Nil(t, got.ADRDocument)
	assert.Equal(t, testEpoch, got.CreatedAt)
}

func TestInsertProject_RequiresOwner(t *testing.T) {
	s := createTestStore(t)

	_, err := s.InsertProject(context.Background(), createTestProject("p1", "ghost", "X", testEpoch))
	assert.Error(t, err, "foreign key on user_id")
}

func TestProjectByOwner_ScopedToOwner(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	createTestUser(t, s, "u2", "b@x.com")

	_, err := s.InsertProject(ctx, createTestProject("p1", "u1", "Mine", testEpoch))
	require.NoError(t, err)

	_, err = s.ProjectByOwner(ctx, "p1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ProjectByOwner(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectsByOwner_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	createTestUser(t, s, "u2", "b@x.com")

	// p1 and p2 share a timestamp; p2 was written later and must come first.
	for _, p := range []Project{
		createTestProject("p1", "u1", "First", testEpoch),
		createTestProject("p2", "u1", "Second", testEpoch),
		createTestProject("p3", "u1", "Older", testEpoch.Add(-time.Hour)),
		createTestProject("other", "u2", "Not mine", testEpoch.Add(time.Hour)),
	} {
		_, err := s.InsertProject(ctx, p)
		require.NoError(t, err)
	}

	projects, err := s.ProjectsByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "p2", projects[0].ID)
	assert.Equal(t, "p1", projects[1].ID)
	assert.Equal(t, "p3", projects[2].ID)

	ids, err := s.ProjectIDsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids)
}

func TestProjectsByOwner_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	projects, err := s.ProjectsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	ids, err := s.ProjectIDsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestUpdateProject_MergesSuppliedColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")

	p := createTestProject("p1", "u1", "Checkout", testEpoch)
	p.RACIChart = strPtr("old raci")
	_, err := s.InsertProject(ctx, p)
	require.NoError(t, err)

	later := testEpoch.Add(time.Hour)
	updated, err := s.UpdateProject(ctx, "p1", "u1", ProjectUpdate{
		Status:     strPtr("in_progress"),
		SprintPlan: strPtr("new sprint"),
		UpdatedAt:  later,
	})
	require.NoError(t, err)

	assert.Equal(t, "in_progress", updated.Status)
	require.NotNil(t, updated.SprintPlan)
	assert.Equal(t, "new sprint", *updated.SprintPlan)
	require.NotNil(t, updated.RACIChart)
	assert.Equal(t, "old raci", *updated.RACIChart, "untouched column kept")
	assert.Equal(t, "Checkout", updated.ProjectName)
	assert.Equal(t, testEpoch, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, int64(2), updated.Seq)
}

func TestUpdateProject_ReplacesConfig(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	_, err := s.InsertProject(ctx, createTestProject("p1", "u1", "Old", testEpoch))
	require.NoError(t, err)

	cfg := []byte(`{"projectName":"New","agents":[],"features":[]}`)
	updated, err := s.UpdateProject(ctx, "p1", "u1", ProjectUpdate{
		ProjectName:  strPtr("New"),
		TeamConfig:   cfg,
		ConfigDigest: strPtr("digest-new"),
		UpdatedAt:    testEpoch,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.ProjectName)
	assert.Equal(t, "digest-new", updated.ConfigDigest)
	assert.JSONEq(t, string(cfg), string(updated.TeamConfig))
}

func TestUpdateProject_WrongOwner(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	createTestUser(t, s, "u2", "b@x.com")
	_, err := s.InsertProject(ctx, createTestProject("p1", "u1", "Mine", testEpoch))
	require.NoError(t, err)

	_, err = s.UpdateProject(ctx, "p1", "u2", ProjectUpdate{Status: strPtr("completed"), UpdatedAt: testEpoch})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.ProjectByOwner(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "not_started", got.Status, "foreign update had no effect")
}

func TestUpdateProject_MovesToFrontOfList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")

	for _, id := range []string{"p1", "p2"} {
		_, err := s.InsertProject(ctx, createTestProject(id, "u1", id, testEpoch))
		require.NoError(t, err)
	}
	_, err := s.UpdateProject(ctx, "p1", "u1", ProjectUpdate{UpdatedAt: testEpoch})
	require.NoError(t, err)

	ids, err := s.ProjectIDsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func TestDeleteProject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	createTestUser(t, s, "u2", "b@x.com")
	_, err := s.InsertProject(ctx, createTestProject("p1", "u1", "Mine", testEpoch))
	require.NoError(t, err)

	removed, err := s.DeleteProject(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.False(t, removed, "wrong owner")

	removed, err = s.DeleteProject(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteProject(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, removed, "already gone")
}

func TestDeleteUser_CascadesToProjects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@x.com")
	_, err := s.InsertProject(ctx, createTestProject("p1", "u1", "Mine", testEpoch))
	require.NoError(t, err)

	_, err = s.db.Exec("DELETE FROM users WHERE id = ?", "u1")
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count))
	assert.Equal(t, 0, count)
}
