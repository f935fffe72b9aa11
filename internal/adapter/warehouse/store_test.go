package warehouse

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestSummaryFromRow(t *testing.T) {
	row := summaryFromRow(valid(68), valid(75), valid(60), valid(10), valid(0.04))
	require.NotNil(t, row)

	require.NotNil(t, row.AvgTempF)
	assert.Equal(t, 68.0, *row.AvgTempF)
	require.NotNil(t, row.MaxTempF)
	assert.Equal(t, 75.0, *row.MaxTempF)
	require.NotNil(t, row.AvgWindKnots)
	assert.Equal(t, 10.0, *row.AvgWindKnots)
	require.NotNil(t, row.TotalPrecipIn)
	assert.Equal(t, 0.04, *row.TotalPrecipIn)
}

func TestSummaryFromRow_NullTemperatureMeansNoData(t *testing.T) {
	// Aggregates over zero rows come back as one all-NULL row.
	assert.Nil(t, summaryFromRow(sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}))

	// Even precipitation alone is not usable without a temperature.
	assert.Nil(t, summaryFromRow(sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, valid(0.5)))
}

func TestSummaryFromRow_PartialNulls(t *testing.T) {
	row := summaryFromRow(valid(50), sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{}, sql.NullFloat64{})
	require.NotNil(t, row)
	assert.Nil(t, row.MaxTempF)
	assert.Nil(t, row.AvgWindKnots)
	assert.Nil(t, row.TotalPrecipIn)
}

func TestIsUndefinedTable(t *testing.T) {
	undefined := &pgconn.PgError{Code: sqlstateUndefinedTable}

	assert.True(t, isUndefinedTable(undefined))
	assert.True(t, isUndefinedTable(fmt.Errorf("check observation exists: %w", undefined)))
	assert.False(t, isUndefinedTable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUndefinedTable(errors.New("connection refused")))
	assert.False(t, isUndefinedTable(nil))
}
