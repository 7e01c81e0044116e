package seeder_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/dataset"
	"shoplens/internal/seeder"
)

func TestSeederProducesLoadableDataset(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	s := seeder.NewSeeder(logger, 500)
	require.NoError(t, s.Run(dir))

	ds, err := dataset.Load(logger, dir)
	require.NoError(t, err)

	assert.Len(t, ds.Sessions, 500)
	assert.NotEmpty(t, ds.Pageviews)
	assert.NotEmpty(t, ds.Orders)
	assert.Len(t, ds.Products, 4)

	// Every order survived the orphan check and carries its rollup.
	for _, o := range ds.Orders {
		assert.Positive(t, o.Revenue)
		assert.Positive(t, o.ItemCount)
	}
}

func TestSeederIsDeterministic(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	dirA, dirB := t.TempDir(), t.TempDir()
	require.NoError(t, seeder.NewSeeder(logger, 200).Run(dirA))
	require.NoError(t, seeder.NewSeeder(logger, 200).Run(dirB))

	dsA, err := dataset.Load(logger, dirA)
	require.NoError(t, err)
	dsB, err := dataset.Load(logger, dirB)
	require.NoError(t, err)

	assert.Equal(t, dsA.Version, dsB.Version)
}
