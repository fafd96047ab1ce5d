// Package source loads the collaborator-supplied inputs: the seed
// reference list, per-parcel geocoded candidates, the pre-extracted
// document regions, and the structure/utility/layout attribute maps.
// All of it is read once per batch run and passed into the pipeline as
// read-only data.
package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SeedRow is one parcel's entry in the seed reference list: the
// free-text address, the county, and the provenance of the original
// document request.
type SeedRow struct {
	ParcelID              string
	Address               string
	County                string
	Method                string
	URL                   string
	MultiValueQueryString map[string][]string
}

// LoadSeed reads the seed CSV into a parcel-id keyed map. Expected
// columns: parcel_id, Address, County, method, url,
// multiValueQueryString (JSON-encoded, may be empty).
func LoadSeed(path string) (map[string]SeedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open seed: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("source: read seed header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"parcel_id", "Address", "County"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("source: seed file missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		if i, ok := col[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	rows := make(map[string]SeedRow)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: read seed row: %w", err)
		}

		row := SeedRow{
			ParcelID: field(record, "parcel_id"),
			Address:  field(record, "Address"),
			County:   field(record, "County"),
			Method:   field(record, "method"),
			URL:      field(record, "url"),
		}
		if raw := field(record, "multiValueQueryString"); raw != "" {
			// A malformed query-string blob only degrades provenance;
			// it never fails the row.
			_ = json.Unmarshal([]byte(raw), &row.MultiValueQueryString)
		}
		if row.ParcelID != "" {
			rows[row.ParcelID] = row
		}
	}
	return rows, nil
}
