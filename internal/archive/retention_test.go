package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/archive"
	"arpulse/internal/testsupport"
)

func TestPruneRuns(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	res := analyzeFixture(t, fixtureRecords())
	logger := testsupport.DiscardLogger()

	old, err := archive.SaveRun(db, res, "old.json", testsupport.DaysAgo(120))
	require.NoError(t, err)
	older, err := archive.SaveRun(db, res, "older.json", testsupport.DaysAgo(200))
	require.NoError(t, err)
	recent, err := archive.SaveRun(db, res, "recent.json", testsupport.DaysAgo(3))
	require.NoError(t, err)

	t.Run("Nothing before the cutoff", func(t *testing.T) {
		deleted, err := archive.PruneRuns(db, testsupport.DaysAgo(365), logger)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})

	t.Run("Removes old runs and their snapshots", func(t *testing.T) {
		deleted, err := archive.PruneRuns(db, testsupport.DaysAgo(90), logger)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		runs, err := archive.ListRuns(db, 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, recent.ID, runs[0].ID)

		for _, id := range []string{old.ID, older.ID} {
			snapshots, err := archive.RunVisitors(db, id)
			require.NoError(t, err)
			assert.Empty(t, snapshots)
		}
		kept, err := archive.RunVisitors(db, recent.ID)
		require.NoError(t, err)
		assert.Len(t, kept, 3)
	})

	t.Run("Empty archive", func(t *testing.T) {
		testsupport.CleanTables(db)

		deleted, err := archive.PruneRuns(db, testsupport.ReferenceNow, logger)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)

		runs, err := archive.ListRuns(db, 0)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}
