package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaleRow is one pre-extracted sales-table row: document row order is
// preserved by slice position.
type SaleRow struct {
	Date  string `json:"date"`
	Price string `json:"price"`
	Owner string `json:"owner"`
}

// TaxYear carries one assessment year's raw currency strings from the
// "Assessed & taxable values" and "Appraisals" tables.
type TaxYear struct {
	Year        string `json:"year"`
	Assessed    string `json:"assessed"`
	Exemption   string `json:"exemption"`
	Taxable     string `json:"taxable"`
	Improvement string `json:"improvement"`
	Land        string `json:"land"`
	Market      string `json:"market"`
}

// RoomCounts are the structural-element counts that drive layout
// replication.
type RoomCounts struct {
	Bedrooms  int `json:"bedrooms"`
	FullBaths int `json:"full_baths"`
	HalfBaths int `json:"half_baths"`
}

// LotDetails are the raw land measurements, zero when unreported.
type LotDetails struct {
	AreaSqft   int `json:"area_sqft"`
	WidthFeet  int `json:"width_feet"`
	LengthFeet int `json:"length_feet"`
}

// Document is one parcel's pre-extracted record regions, produced by the
// upstream tag-traversal collaborator.
type Document struct {
	ParcelIdentifier string     `json:"parcel_identifier"`
	LegalDescription string     `json:"legal_description"`
	SaleDate         string     `json:"sale_date"`
	CurrentOwners    []string   `json:"current_owners"`
	Sales            []SaleRow  `json:"sales"`
	ExemptionNames   []string   `json:"exemptions"`
	PortabilityOwner string     `json:"portability_owner"`
	TaxYears         []TaxYear  `json:"tax_years"`
	Rooms            RoomCounts `json:"room_counts"`
	Lot              LotDetails `json:"lot"`
}

// LoadDocument reads <dir>/<parcelID>.json.
func LoadDocument(dir, parcelID string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(dir, parcelID+".json"))
	if err != nil {
		return nil, fmt.Errorf("source: document for %s: %w", parcelID, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: parse document for %s: %w", parcelID, err)
	}
	return &doc, nil
}

// ListParcels returns the parcel ids of every document JSON in dir, in
// directory order.
func ListParcels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source: list documents: %w", err)
	}
	var parcels []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		parcels = append(parcels, strings.TrimSuffix(name, ".json"))
	}
	return parcels, nil
}
