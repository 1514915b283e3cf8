package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaldrishti/jaldrishti"
	"github.com/jaldrishti/jaldrishti/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReferenceLoader_LoadReference(t *testing.T) {
	dir := t.TempDir()
	loader := &file.ReferenceLoader{
		WardMetadataPath: writeFile(t, dir, "ward_metadata.json", `{
			"1": {"ward_no": 1, "drain_capacity": 52, "imperviousness": 0.72, "area": 150000, "elevation": "Sink"},
			"begumpet": {"ward_no": "Ward 7", "drain_capacity": 80, "imperviousness": 0.5, "area": 90000, "elevation": "Low"}
		}`),
		PopulationPath: writeFile(t, dir, "population.csv",
			"ward,total_population\n Begumpet ,42000\nAmeerpet,61000\n"),
		LocationsPath: writeFile(t, dir, "locations.csv",
			"latitude,longitude,ward_name,isp,road_density,ndvi,population_density\n"+
				"17.44,78.46,begumpet,70,12,0.2,20000\n"+
				"17.43,78.44,Ameerpet,,,,\n"),
	}

	ref, err := loader.LoadReference(context.Background())
	require.NoError(t, err)

	require.Len(t, ref.Wards, 3)
	assert.Equal(t, "1", ref.Wards["1"].WardNo)
	assert.Equal(t, jaldrishti.ElevationSink, ref.Wards["1"].Elevation)

	begumpet, ok := ref.Ward("Begumpet")
	require.True(t, ok)
	assert.Equal(t, "Ward 7", begumpet.WardNo)
	assert.Equal(t, 80.0, begumpet.DrainCapacity)
	assert.Equal(t, 42000, begumpet.Population)

	ameerpet, ok := ref.Ward("AMEERPET")
	require.True(t, ok)
	assert.Equal(t, 61000, ameerpet.Population)
	assert.Zero(t, ameerpet.DrainCapacity)

	require.Len(t, ref.Locations, 2)
	assert.Equal(t, jaldrishti.LocationRecord{
		Lat: 17.44, Lng: 78.46, WardID: "BEGUMPET",
		ImperviousSurfacePct: 70, RoadDensity: 12, NDVI: 0.2, PopulationDensity: 20000,
	}, ref.Locations[0])
	assert.Equal(t, jaldrishti.LocationRecord{
		Lat: 17.43, Lng: 78.44, WardID: "AMEERPET",
		ImperviousSurfacePct: jaldrishti.DefaultISP,
		RoadDensity:          jaldrishti.DefaultRoadDensity,
		NDVI:                 jaldrishti.DefaultNDVI,
		PopulationDensity:    jaldrishti.DefaultPopulationDensity,
	}, ref.Locations[1])
}

func TestReferenceLoader_EmptyPaths(t *testing.T) {
	ref, err := (&file.ReferenceLoader{}).LoadReference(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ref.Wards)
	assert.Empty(t, ref.Locations)
}

func TestReferenceLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		loader file.ReferenceLoader
	}{
		{"missing file", file.ReferenceLoader{WardMetadataPath: filepath.Join(dir, "nope.json")}},
		{"bad json", file.ReferenceLoader{WardMetadataPath: writeFile(t, dir, "bad.json", `{"1":`)}},
		{"zero drain capacity", file.ReferenceLoader{
			WardMetadataPath: writeFile(t, dir, "zero.json", `{"1": {"ward_no": 1, "drain_capacity": 0}}`),
		}},
		{"locations without latitude", file.ReferenceLoader{
			LocationsPath: writeFile(t, dir, "noheader.csv", "ward_name,isp\nA,10\n"),
		}},
		{"non numeric isp", file.ReferenceLoader{
			LocationsPath: writeFile(t, dir, "badisp.csv", "latitude,longitude,ward_name,isp\n1,2,A,high\n"),
		}},
		{"population without columns", file.ReferenceLoader{
			PopulationPath: writeFile(t, dir, "pop.csv", "name,count\nA,1\n"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.LoadReference(context.Background())
			assert.Error(t, err)
		})
	}
}
