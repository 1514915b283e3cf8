// Package file loads ward and location reference data from the JSON and CSV
// files shipped with the deployment.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure loader implements interface.
var _ jaldrishti.ReferenceLoader = (*ReferenceLoader)(nil)

// ReferenceLoader reads reference data from disk. Any path may be empty,
// in which case that table is left empty.
type ReferenceLoader struct {
	// WardMetadataPath is a JSON object keyed by ward ID.
	WardMetadataPath string

	// LocationsPath is a CSV with a header row.
	LocationsPath string

	// PopulationPath is a CSV of ward census population.
	PopulationPath string
}

// LoadReference reads and merges every configured file.
func (l *ReferenceLoader) LoadReference(ctx context.Context) (*jaldrishti.ReferenceData, error) {
	ref := &jaldrishti.ReferenceData{Wards: make(map[string]jaldrishti.WardMeta)}

	if l.WardMetadataPath != "" {
		if err := readFile(l.WardMetadataPath, func(r io.Reader) error {
			return decodeWardMetadata(r, ref.Wards)
		}); err != nil {
			return nil, err
		}
	}
	if l.PopulationPath != "" {
		if err := readFile(l.PopulationPath, func(r io.Reader) error {
			return decodePopulation(r, ref.Wards)
		}); err != nil {
			return nil, err
		}
	}
	if l.LocationsPath != "" {
		if err := readFile(l.LocationsPath, func(r io.Reader) error {
			locations, err := decodeLocations(r)
			ref.Locations = locations
			return err
		}); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(strings.TrimSpace(string(data)))
	return nil
}

type wardRecord struct {
	WardNo         flexString `json:"ward_no"`
	DrainCapacity  float64    `json:"drain_capacity"`
	Imperviousness float64    `json:"imperviousness"`
	Area           float64    `json:"area"`
	Elevation      string     `json:"elevation"`
	Population     int        `json:"population"`
}

func decodeWardMetadata(r io.Reader, wards map[string]jaldrishti.WardMeta) error {
	var records map[string]wardRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return err
	}
	for key, rec := range records {
		id := jaldrishti.NormalizeWardID(key)
		if id == "" {
			continue
		}
		if rec.DrainCapacity <= 0 {
			return fmt.Errorf("ward %s: drain_capacity must be positive", key)
		}
		wards[id] = jaldrishti.WardMeta{
			WardID:         id,
			WardNo:         string(rec.WardNo),
			DrainCapacity:  rec.DrainCapacity,
			Imperviousness: rec.Imperviousness,
			Area:           rec.Area,
			Elevation:      jaldrishti.Elevation(rec.Elevation),
			Population:     rec.Population,
		}
	}
	return nil
}

// csvTable indexes a CSV by header name.
type csvTable struct {
	columns map[string]int
	reader  *csv.Reader
}

func newCSVTable(r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "﻿")))] = i
	}
	return &csvTable{columns: columns, reader: reader}, nil
}

func (t *csvTable) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

func (t *csvTable) get(row []string, names ...string) string {
	for _, name := range names {
		if i, ok := t.columns[name]; ok && i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func (t *csvTable) float(row []string, def float64, names ...string) (float64, error) {
	v := t.get(row, names...)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", names[0], err)
	}
	return f, nil
}

// next returns the next row and its 1-based line number, or io.EOF.
func (t *csvTable) next() ([]string, int, error) {
	row, err := t.reader.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := t.reader.FieldPos(0)
	return row, line, nil
}

func decodePopulation(r io.Reader, wards map[string]jaldrishti.WardMeta) error {
	t, err := newCSVTable(r)
	if err != nil {
		return err
	}
	if !t.has("ward") || !t.has("total_population") {
		return errors.New("population file needs ward and total_population columns")
	}
	for {
		row, line, err := t.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		id := jaldrishti.NormalizeWardID(t.get(row, "ward"))
		if id == "" {
			continue
		}
		pop, err := t.float(row, 0, "total_population")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		w, ok := wards[id]
		if !ok {
			w = jaldrishti.WardMeta{WardID: id}
		}
		w.Population = int(pop)
		wards[id] = w
	}
}

func decodeLocations(r io.Reader) ([]jaldrishti.LocationRecord, error) {
	t, err := newCSVTable(r)
	if err != nil {
		return nil, err
	}
	if !t.has("latitude") && !t.has("lat") {
		return nil, errors.New("locations file needs a latitude column")
	}

	locations := []jaldrishti.LocationRecord{}
	for {
		row, line, err := t.next()
		if errors.Is(err, io.EOF) {
			return locations, nil
		}
		if err != nil {
			return nil, err
		}
		loc, err := parseLocation(t, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		locations = append(locations, loc)
	}
}

func parseLocation(t *csvTable, row []string) (jaldrishti.LocationRecord, error) {
	loc := jaldrishti.LocationRecord{
		WardID: jaldrishti.NormalizeWardID(t.get(row, "ward_name", "ward_id", "ward")),
	}
	if loc.WardID == "" {
		loc.WardID = "UNKNOWN"
	}

	var err error
	if loc.Lat, err = t.float(row, 0, "latitude", "lat"); err != nil {
		return loc, err
	}
	if loc.Lng, err = t.float(row, 0, "longitude", "lng", "lon"); err != nil {
		return loc, err
	}
	if loc.ImperviousSurfacePct, err = t.float(row, jaldrishti.DefaultISP, "isp", "impervious_surface_pct"); err != nil {
		return loc, err
	}
	if loc.RoadDensity, err = t.float(row, jaldrishti.DefaultRoadDensity, "road_density"); err != nil {
		return loc, err
	}
	if loc.NDVI, err = t.float(row, jaldrishti.DefaultNDVI, "ndvi"); err != nil {
		return loc, err
	}
	if loc.PopulationDensity, err = t.float(row, jaldrishti.DefaultPopulationDensity, "population_density"); err != nil {
		return loc, err
	}
	return loc, nil
}
