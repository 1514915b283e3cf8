package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jaldrishti/jaldrishti"
)

// ReferenceService loads and imports ward reference data.
type ReferenceService struct {
	db *DB
}

// LoadReference reads every ward and location.
func (s *ReferenceService) LoadReference(ctx context.Context) (*jaldrishti.ReferenceData, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT ward_id, ward_no, drain_capacity, imperviousness, area, elevation, population
		FROM wards
		ORDER BY ward_id`)
	if err != nil {
		return nil, internal("Failed to load wards", err)
	}
	wards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (jaldrishti.WardMeta, error) {
		var w jaldrishti.WardMeta
		var elevation string
		err := row.Scan(&w.WardID, &w.WardNo, &w.DrainCapacity, &w.Imperviousness, &w.Area, &elevation, &w.Population)
		w.Elevation = jaldrishti.Elevation(elevation)
		return w, err
	})
	if err != nil {
		return nil, internal("Failed to load wards", err)
	}

	rows, err = s.db.pool.Query(ctx, `
		SELECT ward_id, latitude, longitude, isp, road_density, ndvi, population_density
		FROM locations
		ORDER BY id`)
	if err != nil {
		return nil, internal("Failed to load locations", err)
	}
	locations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (jaldrishti.LocationRecord, error) {
		var l jaldrishti.LocationRecord
		err := row.Scan(&l.WardID, &l.Lat, &l.Lng, &l.ImperviousSurfacePct, &l.RoadDensity, &l.NDVI, &l.PopulationDensity)
		return l, err
	})
	if err != nil {
		return nil, internal("Failed to load locations", err)
	}

	ref := &jaldrishti.ReferenceData{
		Wards:     make(map[string]jaldrishti.WardMeta, len(wards)),
		Locations: locations,
	}
	for _, w := range wards {
		ref.Wards[w.WardID] = w
	}
	return ref, nil
}

// ImportReference upserts every ward and replaces the location table in a
// single transaction. Locations naming an unknown ward get a placeholder
// ward row.
func (s *ReferenceService) ImportReference(ctx context.Context, ref *jaldrishti.ReferenceData) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return jaldrishti.Internal("Failed to begin import", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, w := range ref.SortedWards() {
		batch.Queue(`
			INSERT INTO wards (ward_id, ward_no, drain_capacity, imperviousness, area, elevation, population)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (ward_id) DO UPDATE SET
				ward_no = EXCLUDED.ward_no,
				drain_capacity = EXCLUDED.drain_capacity,
				imperviousness = EXCLUDED.imperviousness,
				area = EXCLUDED.area,
				elevation = EXCLUDED.elevation,
				population = EXCLUDED.population,
				updated_at = now()`,
			w.WardID, w.WardNo, w.DrainCapacity, w.Imperviousness, w.Area, string(w.Elevation), w.Population)
	}
	placeholders := make(map[string]struct{})
	for _, l := range ref.Locations {
		if _, ok := ref.Wards[l.WardID]; ok {
			continue
		}
		if _, ok := placeholders[l.WardID]; ok {
			continue
		}
		placeholders[l.WardID] = struct{}{}
		batch.Queue(`INSERT INTO wards (ward_id) VALUES ($1) ON CONFLICT (ward_id) DO NOTHING`, l.WardID)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return internal("Failed to import wards", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM locations`); err != nil {
		return internal("Failed to clear locations", err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"locations"},
		[]string{"ward_id", "latitude", "longitude", "isp", "road_density", "ndvi", "population_density"},
		pgx.CopyFromSlice(len(ref.Locations), func(i int) ([]any, error) {
			l := ref.Locations[i]
			return []any{l.WardID, l.Lat, l.Lng, l.ImperviousSurfacePct, l.RoadDensity, l.NDVI, l.PopulationDensity}, nil
		}),
	)
	if err != nil {
		return internal("Failed to import locations", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return jaldrishti.Internal("Failed to commit import", err)
	}
	return nil
}
