package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/parcelgraph/internal/audit"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "seed.csv"),
		`parcel_id,Address,County,method,url,multiValueQueryString
p1,90 CLEMATIS,Palm Beach,GET,https://pbcpao.gov/Property/Details,
`)
	writeFile(t, filepath.Join(dir, "candidates", "p1.json"),
		`[{"number":"90","street":"Clematis","unit":null,"city":"West Palm Beach","postcode":"33401","coordinates":[-80.05,26.71]}]`)
	writeFile(t, filepath.Join(dir, "documents", "p1.json"), `{
		"parcel_identifier": "p-1",
		"legal_description": "LOT 9 BLK 8",
		"sale_date": "03/15/2019",
		"current_owners": ["SMITH JOHN"],
		"sales": [{"date": "03/15/2019", "price": "$450,000", "owner": "SMITH JOHN"}],
		"exemptions": [],
		"portability_owner": "",
		"tax_years": [{"year": "2024", "assessed": "$310,000", "land": "$110,000"}],
		"room_counts": {"bedrooms": 1, "full_baths": 0, "half_baths": 0},
		"lot": {"area_sqft": 0, "width_feet": 0, "length_feet": 0}
	}`)

	return Config{
		SeedPath:     filepath.Join(dir, "seed.csv"),
		CandidateDir: filepath.Join(dir, "candidates"),
		DocumentDir:  filepath.Join(dir, "documents"),
		AttributeDir: filepath.Join(dir, "attributes"),
		DataDir:      filepath.Join(dir, "data"),
		Workers:      2,
	}
}

func TestRunResolvedParcel(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AuditPath = filepath.Join(t.TempDir(), "audit.db")
	cfg.AuditLabel = "test"

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if summary.Processed != 1 || summary.Resolved != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	res := summary.Results[0]
	if res.Method != "exact" || res.Owners != 1 || res.Sales != 1 || res.Links != 1 {
		t.Errorf("result = %+v", res)
	}

	parcelDir := filepath.Join(cfg.DataDir, "p1")
	for _, name := range []string{
		"address.json", "property.json", "sales_1.json", "person_1_1.json",
		"relationship_sales_person_1_1.json", "tax_2024.json", "lot.json",
		"layout_1.json",
	} {
		if _, err := os.Stat(filepath.Join(parcelDir, name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}

	var addr map[string]any
	data, err := os.ReadFile(filepath.Join(parcelDir, "address.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &addr); err != nil {
		t.Fatal(err)
	}
	if addr["street_name"] != "CLEMATIS" || addr["city_name"] != "WEST PALM BEACH" {
		t.Errorf("address = %v", addr)
	}
	if addr["street_suffix_type"] != nil {
		t.Errorf("absent suffix should be null, got %v", addr["street_suffix_type"])
	}

	var rel map[string]map[string]string
	data, err = os.ReadFile(filepath.Join(parcelDir, "relationship_sales_person_1_1.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &rel); err != nil {
		t.Fatal(err)
	}
	if rel["to"]["/"] != "./person_1_1.json" || rel["from"]["/"] != "./sales_1.json" {
		t.Errorf("relationship = %v", rel)
	}

	store, err := audit.Open(cfg.AuditPath)
	if err != nil {
		t.Fatalf("reopen audit: %v", err)
	}
	defer store.Close()
	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Processed != 1 || runs[0].Resolved != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	decisions, err := store.ListDecisions(runs[0].ID)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(decisions) != 1 || decisions[0].Method != "exact" {
		t.Errorf("decisions = %+v", decisions)
	}
}

func TestRunUnresolvedParcel(t *testing.T) {
	cfg := newTestConfig(t)
	// A document with no seed row and no candidate file still gets its
	// non-address records.
	writeFile(t, filepath.Join(cfg.DocumentDir, "p2.json"), `{
		"sale_date": "",
		"current_owners": ["ACME HOLDINGS LLC"],
		"sales": [],
		"room_counts": {"bedrooms": 0, "full_baths": 0, "half_baths": 0},
		"lot": {}
	}`)

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 2 || summary.Resolved != 1 || summary.Unresolved != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "p2", "address.json")); !os.IsNotExist(err) {
		t.Error("unresolved parcel should have no address record")
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "p2", "property.json")); err != nil {
		t.Errorf("property record should still be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "p2", "lot.json")); err != nil {
		t.Errorf("lot record should still be written: %v", err)
	}
}

func TestProcessParcelMissingDocument(t *testing.T) {
	cfg := newTestConfig(t)
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	res := p.ProcessParcel(context.Background(), "missing")
	if res.Err == nil {
		t.Fatal("want error for missing document")
	}
}
