package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seed.csv",
		`parcel_id,Address,County,method,url,multiValueQueryString
50434407050080090,90 N CLEMATIS ST,Palm Beach,GET,https://pbcpao.gov/Property/Details,"{""parcelID"":[""50434407050080090""]}"
74434404070000160,1605 S US HIGHWAY 1,Palm Beach,GET,https://pbcpao.gov/Property/Details,
,IGNORED ROW,Palm Beach,,,
`)

	rows, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank parcel_id skipped)", len(rows))
	}
	row := rows["50434407050080090"]
	if row.Address != "90 N CLEMATIS ST" || row.County != "Palm Beach" {
		t.Errorf("row = %+v", row)
	}
	if got := row.MultiValueQueryString["parcelID"]; len(got) != 1 || got[0] != "50434407050080090" {
		t.Errorf("MultiValueQueryString = %v", row.MultiValueQueryString)
	}
	if rows["74434404070000160"].MultiValueQueryString != nil {
		t.Error("empty query string blob should stay nil")
	}
}

func TestLoadSeedMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seed.csv", "parcel_id,Address\n1,90 N CLEMATIS ST\n")
	if _, err := LoadSeed(path); err == nil {
		t.Fatal("want error for missing County column")
	}
}

func TestLoadCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p1.json",
		`[{"number":"90","street":"N Clematis St","unit":null,"city":"West Palm Beach","postcode":33401,"coordinates":[-80.05,26.71]}]`)

	candidates, err := LoadCandidates(dir, "p1")
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	c := candidates[0]
	if c.Number.String() != "90" || c.Street != "N Clematis St" {
		t.Errorf("candidate = %+v", c)
	}
	if c.Unit.String() != "" {
		t.Errorf("null unit = %q", c.Unit.String())
	}
	if c.Postcode.String() != "33401" {
		t.Errorf("numeric postcode = %q", c.Postcode.String())
	}
	if c.Longitude() != -80.05 || c.Latitude() != 26.71 {
		t.Errorf("coordinates = %v,%v", c.Longitude(), c.Latitude())
	}
}

func TestLoadCandidatesMissingFile(t *testing.T) {
	_, err := LoadCandidates(t.TempDir(), "nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestLoadDocumentAndListParcels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p1.json", `{
		"parcel_identifier": "50-43-44-07-05-008-0090",
		"legal_description": "LOT 9 BLK 8",
		"sale_date": "03/15/2019",
		"current_owners": ["SMITH JOHN & SMITH JANE"],
		"sales": [{"date": "03/15/2019", "price": "$450,000", "owner": "DOE JIM"}],
		"exemptions": ["SMITH JOHN"],
		"portability_owner": "",
		"tax_years": [{"year": "2024", "assessed": "$310,000", "land": "$110,000"}],
		"room_counts": {"bedrooms": 3, "full_baths": 2, "half_baths": 1},
		"lot": {"area_sqft": 7500, "width_feet": 75, "length_feet": 100}
	}`)
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(dir, "p1")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.ParcelIdentifier != "50-43-44-07-05-008-0090" || doc.SaleDate != "03/15/2019" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Sales) != 1 || doc.Sales[0].Price != "$450,000" {
		t.Errorf("sales = %+v", doc.Sales)
	}
	if doc.Rooms.Bedrooms != 3 || doc.Lot.AreaSqft != 7500 {
		t.Errorf("rooms/lot = %+v %+v", doc.Rooms, doc.Lot)
	}

	parcels, err := ListParcels(dir)
	if err != nil {
		t.Fatalf("ListParcels: %v", err)
	}
	if len(parcels) != 1 || parcels[0] != "p1" {
		t.Errorf("parcels = %v", parcels)
	}
}

func TestLoadAttributes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "structure_data.json",
		`{"property_p1": {"roof_design_type": "Gable", "area": "1200"}}`)
	writeFile(t, dir, "layout_data.json",
		`{"property_p1": {"layouts": [{"space_type": "Bedroom", "flooring_material": "Tile"}]}}`)

	set, err := LoadAttributes(dir)
	if err != nil {
		t.Fatalf("LoadAttributes: %v", err)
	}
	if set.Structure["property_p1"]["roof_design_type"] != "Gable" {
		t.Errorf("structure = %v", set.Structure)
	}
	if len(set.Utility) != 0 {
		t.Errorf("missing utility file should leave an empty map, got %v", set.Utility)
	}

	tpl := set.LayoutTemplate("p1")
	if tpl == nil || tpl["flooring_material"] != "Tile" {
		t.Fatalf("template = %v", tpl)
	}
	tpl["flooring_material"] = "mutated"
	if set.LayoutTemplate("p1")["flooring_material"] != "Tile" {
		t.Error("template should be a copy")
	}
	if set.LayoutTemplate("unknown") != nil {
		t.Error("unknown parcel should yield nil template")
	}
}
