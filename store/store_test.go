package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/index"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := []index.Result{
		{File: "crates-io", Packages: []crates.Package{{Name: "serde", Version: "1.0.0"}, {Name: "rand", Version: "0.8.5"}}},
		{File: "crates-web", Packages: []crates.Package{{Name: "hyper", Version: "1.1.0"}}},
		{File: "crates-dup", Packages: []crates.Package{{Name: "hyper", Version: "1.1.0"}, {Name: "hyper", Version: "1.1.0"}}},
	}

	run := &Run{Source: "testdata", Files: 5, Cached: 1, Failures: 2}
	require.NoError(t, s.SaveRun(ctx, run, results))

	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.False(t, run.StartedAt.IsZero())

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, "testdata", latest.Source)
	assert.Equal(t, 5, latest.Files)
	assert.Equal(t, 1, latest.Cached)
	assert.Equal(t, 2, latest.Failures)
	assert.True(t, run.StartedAt.Equal(latest.StartedAt))

	got, err := s.Results(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(results, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, rev := range []string{"aaa", "ccc", "bbb"} {
		started := base.Add(time.Duration(i) * time.Hour)
		if rev == "bbb" {
			started = base.Add(-time.Hour)
		}
		run := &Run{ID: rev, StartedAt: started, Source: "guix", Revision: rev}
		require.NoError(t, s.SaveRun(ctx, run, nil))
	}

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ccc", latest.ID)
	assert.Equal(t, "ccc", latest.Revision)
}

func TestSaveRunDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := []index.Result{{File: "a", Packages: []crates.Package{{Name: "x", Version: "1"}}}}

	require.NoError(t, s.SaveRun(ctx, &Run{ID: "same"}, results))
	assert.Error(t, s.SaveRun(ctx, &Run{ID: "same"}, results))

	got, err := s.Results(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestResultsUnknownRun(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Results(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	run := &Run{Source: "dir"}
	require.NoError(t, s.SaveRun(ctx, run, nil))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
}
