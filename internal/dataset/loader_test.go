package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads a csv with header", func(t *testing.T) {
		path := writeTempCSV(t, "trips.csv",
			"fare_amount, tip_amount\n12.50,2.00\n8.00,1.50\n")

		tbl, err := Load(path, nil)
		require.NoError(t, err)

		// Header cells are trimmed.
		assert.Equal(t, []string{"fare_amount", "tip_amount"}, tbl.Columns)
		assert.Equal(t, 2, tbl.Len())
		assert.Equal(t, "12.50", tbl.Cell(0, 0))
	})

	t.Run("ragged rows read as empty cells", func(t *testing.T) {
		path := writeTempCSV(t, "ragged.csv",
			"a,b,c\n1,2,3\n4,5\n")

		tbl, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "5", tbl.Cell(1, 1))
		assert.Equal(t, "", tbl.Cell(1, 2))
	})

	t.Run("unsupported extension fails", func(t *testing.T) {
		_, err := Load("trips.parquet", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported table format")
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), nil)
		assert.Error(t, err)
	})

	t.Run("empty csv fails", func(t *testing.T) {
		path := writeTempCSV(t, "empty.csv", "")
		_, err := Load(path, nil)
		assert.Error(t, err)
	})
}

func TestTable(t *testing.T) {
	tbl := NewTable(
		[]string{"a", "b", "mta_tax"},
		[][]string{{"1", "2", "0.5"}, {"3", "4", "0.5"}},
	)

	t.Run("column lookup", func(t *testing.T) {
		i, ok := tbl.Col("b")
		assert.True(t, ok)
		assert.Equal(t, 1, i)
		assert.False(t, tbl.HasColumn("z"))
	})

	t.Run("drop returns a new table", func(t *testing.T) {
		dropped := tbl.Drop("mta_tax", "not_there")
		assert.Equal(t, []string{"a", "b"}, dropped.Columns)
		assert.Equal(t, []string{"a", "b", "mta_tax"}, tbl.Columns)
		assert.Equal(t, "4", dropped.Cell(1, 1))
	})

	t.Run("drop of nothing returns the receiver", func(t *testing.T) {
		same := tbl.Drop("not_there")
		assert.Same(t, tbl, same)
	})
}

func TestLoadZones(t *testing.T) {
	t.Run("loads zones with optional columns", func(t *testing.T) {
		path := writeTempCSV(t, "zones.csv",
			"LocationID,Borough,Zone,service_zone\n1,EWR,Newark Airport,EWR\n2,Queens,Jamaica Bay,Boro Zone\n")

		zones, err := LoadZones(path, nil)
		require.NoError(t, err)
		require.Len(t, zones, 2)
		assert.Equal(t, 1, zones[0].LocationID)
		assert.Equal(t, "Queens", zones[1].Borough)
		assert.Equal(t, "Boro Zone", zones[1].ServiceZone)
	})

	t.Run("missing LocationID column fails", func(t *testing.T) {
		path := writeTempCSV(t, "zones.csv", "Borough,Zone\nEWR,Newark Airport\n")
		_, err := LoadZones(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LocationID")
	})

	t.Run("unparsable ids are skipped", func(t *testing.T) {
		path := writeTempCSV(t, "zones.csv", "LocationID,Zone\n1,Alphabet City\n,\nnot-a-number,Astoria\n")
		zones, err := LoadZones(path, nil)
		require.NoError(t, err)
		assert.Len(t, zones, 1)
	})
}
