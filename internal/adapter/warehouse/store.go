// Package warehouse implements the storage-query and storage-write
// capabilities against a Postgres-compatible warehouse: the bulk GSOD dataset
// on the read side and the canonical observation table on the write side.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const sqlstateUndefinedTable = "42P01"

// Store wraps the warehouse connection. It implements ingest.PrimarySource
// and ingest.DestinationStore.
type Store struct {
	db     *sql.DB
	cfg    *config.Config
	logger *slog.Logger
}

// NewStore opens the warehouse connection and verifies it with a bounded ping.
func NewStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("pgx", cfg.WarehouseDSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WarehouseTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return &Store{db: db, cfg: cfg, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness reports whether the warehouse is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// QueryDailySummary aggregates the GSOD rows for the configured station and
// the given date. Returns nil when the dataset has no usable rows.
func (s *Store) QueryDailySummary(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WarehouseTimeout)
	defer cancel()

	// Table names come from config, never from request input.
	query := fmt.Sprintf(`
		SELECT AVG(temp), AVG(max), AVG(min), AVG(wdsp), SUM(prcp)
		FROM %s
		WHERE station_id = $1 AND date = $2 AND temp IS NOT NULL`,
		s.cfg.GSODTable)

	var avgTemp, maxTemp, minTemp, avgWind, totalPrecip sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query, s.cfg.StationID, date).
		Scan(&avgTemp, &maxTemp, &minTemp, &avgWind, &totalPrecip)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query daily summary: %w", err)
	}

	return summaryFromRow(avgTemp, maxTemp, minTemp, avgWind, totalPrecip), nil
}

// ObservationExists reports whether the destination table already holds a
// record for date. A missing table means nothing to skip, not an error;
// ingestion must be safe before first-run schema creation.
func (s *Store) ObservationExists(ctx context.Context, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WarehouseTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE date = $1`, s.cfg.ObservationTable)

	var count int
	if err := s.db.QueryRowContext(ctx, query, date).Scan(&count); err != nil {
		if isUndefinedTable(err) {
			s.logger.Debug("destination table does not exist yet", "table", s.cfg.ObservationTable)
			return false, nil
		}
		return false, fmt.Errorf("check observation exists: %w", err)
	}
	return count > 0, nil
}

// InsertObservation writes one canonical observation row.
func (s *Store) InsertObservation(ctx context.Context, obs domain.Observation) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WarehouseTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (date, temperature, humidity, wind_speed, precipitation, weather_condition, ingestion_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.cfg.ObservationTable)

	_, err := s.db.ExecContext(ctx, query,
		obs.Date,
		obs.TemperatureC,
		obs.HumidityPct,
		obs.WindSpeedMS,
		obs.PrecipitationMM,
		obs.Condition,
		obs.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert observation for %s: %w", obs.DateString(), err)
	}
	return nil
}

// summaryFromRow converts scanned aggregates into a DailySummary. Aggregating
// zero rows yields one all-NULL row, so a NULL average temperature means the
// dataset has no usable data for the date.
func summaryFromRow(avgTemp, maxTemp, minTemp, avgWind, totalPrecip sql.NullFloat64) *domain.DailySummary {
	if !avgTemp.Valid {
		return nil
	}
	return &domain.DailySummary{
		AvgTempF:      nullableFloat(avgTemp),
		MaxTempF:      nullableFloat(maxTemp),
		MinTempF:      nullableFloat(minTemp),
		AvgWindKnots:  nullableFloat(avgWind),
		TotalPrecipIn: nullableFloat(totalPrecip),
	}
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateUndefinedTable
}
