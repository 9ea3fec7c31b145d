package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/ngramSweep/sweep"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRows() []sweep.Row {
	return []sweep.Row{
		{Task: "1", N: 2, Threshold: 0, Accuracy: 0.5, ThresholdAccuracy: 0.5, Grams: 10, AboveThreshold: 10},
		{Task: "1", N: 2, Threshold: 0.95, Accuracy: 0.5, ThresholdAccuracy: math.NaN(), Grams: 10, UndefinedFolds: 5},
		{Task: "2", N: 3, Threshold: 0.05, Accuracy: math.NaN(), ThresholdAccuracy: math.NaN(), Grams: 0, UndefinedFolds: 5},
	}
}

func TestSaveRunAndRows(t *testing.T) {
	s := tempStore(t)
	cfg := sweep.DefaultConfig()
	cfg.Workers = 3

	id, err := s.SaveRun(cfg, testRows())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Rows(id)
	require.NoError(t, err)
	want := testRows()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Task, got[i].Task)
		assert.Equal(t, want[i].N, got[i].N)
		assert.Equal(t, want[i].Threshold, got[i].Threshold)
		assert.Equal(t, want[i].Grams, got[i].Grams)
		assert.Equal(t, want[i].AboveThreshold, got[i].AboveThreshold)
		assert.Equal(t, want[i].UndefinedFolds, got[i].UndefinedFolds)
	}
	assert.Equal(t, 0.5, got[0].ThresholdAccuracy)
	assert.True(t, math.IsNaN(got[1].ThresholdAccuracy))
	assert.True(t, math.IsNaN(got[2].Accuracy))

	run, err := s.Run(id)
	require.NoError(t, err)
	assert.Equal(t, cfg, run.Config)
	assert.Equal(t, 3, run.Rows)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRunsListsEverySweep(t *testing.T) {
	s := tempStore(t)
	first, err := s.SaveRun(sweep.DefaultConfig(), testRows())
	require.NoError(t, err)
	second, err := s.SaveRun(sweep.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, 0, runs[1].Rows)

	rows, err := s.Rows(second)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUnknownRun(t *testing.T) {
	s := tempStore(t)
	_, err := s.Rows("missing")
	assert.Error(t, err)
	_, err = s.Run("missing")
	assert.Error(t, err)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	id, err := s.SaveRun(sweep.DefaultConfig(), testRows())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.Rows(id)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
