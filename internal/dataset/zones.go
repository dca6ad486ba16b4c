package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Zone is one row of the taxi zone lookup table. The lookup is loaded
// and reported but not joined into the modeling core.
type Zone struct {
	LocationID  int    `json:"location_id"`
	Borough     string `json:"borough"`
	Zone        string `json:"zone"`
	ServiceZone string `json:"service_zone"`
}

// LoadZones reads the zone lookup table from a CSV or xlsx file.
func LoadZones(path string, logger *slog.Logger) ([]Zone, error) {
	tbl, err := Load(path, logger)
	if err != nil {
		return nil, err
	}

	idIdx, ok := tbl.Col("LocationID")
	if !ok {
		return nil, fmt.Errorf("zone lookup %s: missing LocationID column", path)
	}
	boroughIdx, _ := tbl.Col("Borough")
	zoneIdx, _ := tbl.Col("Zone")
	serviceIdx, _ := tbl.Col("service_zone")

	zones := make([]Zone, 0, tbl.Len())
	for r := 0; r < tbl.Len(); r++ {
		id, err := strconv.Atoi(tbl.Cell(r, idIdx))
		if err != nil {
			continue // header remnants or blank trailing rows
		}
		z := Zone{LocationID: id}
		if tbl.HasColumn("Borough") {
			z.Borough = tbl.Cell(r, boroughIdx)
		}
		if tbl.HasColumn("Zone") {
			z.Zone = tbl.Cell(r, zoneIdx)
		}
		if tbl.HasColumn("service_zone") {
			z.ServiceZone = tbl.Cell(r, serviceIdx)
		}
		zones = append(zones, z)
	}
	return zones, nil
}
