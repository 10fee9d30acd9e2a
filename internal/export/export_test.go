package export

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
	"github.com/sells-group/hazard-cli/internal/model"
)

func testGmms(t *testing.T) *model.GmmSet {
	t.Helper()
	gmms, err := model.NewGmmSetBuilder().
		Primary(model.GmmWeights{"ASK_14": 0.5, "BSSA_14": 0.5}, 300).
		Build()
	require.NoError(t, err)
	return gmms
}

func testFaultSet(t *testing.T) *model.FaultSourceSet {
	t.Helper()

	p1, err := geo.NewLocation(34.0, -118.0, 0)
	require.NoError(t, err)
	p2, err := geo.NewLocation(34.3, -118.0, 0)
	require.NoError(t, err)
	trace, err := geo.NewLocationList(p1, p2)
	require.NoError(t, err)

	src, err := model.NewFaultSourceBuilder().
		Name("Test Fault").
		ID(1).
		Trace(trace).
		Dip(90).
		Width(12).
		Depth(0).
		Rake(0).
		Mfd(mfd.NewSingle(6.5, 0.001, false)).
		SurfaceSpacing(1).
		Scaling(surface.ScalingFaultWC94Length).
		Floating(surface.FloatOff).
		Variability(false).
		Build()
	require.NoError(t, err)

	set, err := model.NewFaultSourceSetBuilder().
		Name("Test Faults").
		ID(100).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(src).
		Build()
	require.NoError(t, err)
	return set
}

// expectSetUpsert matches the BulkUpsert sequence for the source_sets
// summary row: Begin -> CREATE TEMP TABLE -> CopyFrom -> INSERT ON
// CONFLICT -> Commit.
func expectSetUpsert(m pgxmock.PgxPoolIface) {
	m.ExpectBegin()
	m.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_hazard_source_sets"},
		[]string{"run_id", "name", "type", "weight", "sources"}).WillReturnResult(1)
	m.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	m.ExpectCommit()
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS hazard").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	e := NewWithPool(mock)
	assert.NoError(t, e.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSourceSet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	set := testFaultSet(t)

	expectSetUpsert(mock)
	mock.ExpectCopyFrom(pgx.Identifier{"hazard", "ruptures"}, ruptureColumns).
		WillReturnResult(1)

	e := NewWithPool(mock)
	n, err := e.ExportSourceSet(context.Background(), set, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSourceSet_Batching(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// A batch size of 1 forces a COPY per rupture.
	set := testFaultSet(t)
	require.Equal(t, 1, set.Source(0).Size())

	expectSetUpsert(mock)
	mock.ExpectCopyFrom(pgx.Identifier{"hazard", "ruptures"}, ruptureColumns).
		WillReturnResult(1)

	e := NewWithPool(mock, WithBatchSize(1))
	n, err := e.ExportSourceSet(context.Background(), set, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSourceSet_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	set := testFaultSet(t)

	expectSetUpsert(mock)
	mock.ExpectCopyFrom(pgx.Identifier{"hazard", "ruptures"}, ruptureColumns).
		WillReturnError(fmt.Errorf("copy failed"))

	e := NewWithPool(mock)
	_, err = e.ExportSourceSet(context.Background(), set, "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO hazard.ruptures")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSourceSet_UpsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	set := testFaultSet(t)

	mock.ExpectBegin().WillReturnError(fmt.Errorf("db error"))

	e := NewWithPool(mock)
	_, err = e.ExportSourceSet(context.Background(), set, "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestExportSourceSet_SkipsJointSources(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	faults := testFaultSet(t)
	cluster, err := model.NewClusterSource(0.002, faults)
	require.NoError(t, err)
	set, err := model.NewClusterSourceSetBuilder().
		Name("Test Clusters").
		ID(200).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(cluster).
		Build()
	require.NoError(t, err)

	// Only the summary row lands; the cluster itself yields no rupture
	// rows because its ruptures are jointly defined.
	expectSetUpsert(mock)

	e := NewWithPool(mock)
	n, err := e.ExportSourceSet(context.Background(), set, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
