package records

import (
	"math"
	"strconv"
	"strings"

	"github.com/parcelgraph/internal/address"
	"github.com/parcelgraph/internal/linker"
	"github.com/parcelgraph/internal/normalize"
	"github.com/parcelgraph/internal/owner"
	"github.com/parcelgraph/internal/source"
)

// Assembler merges core resolution results with collaborator-supplied
// attributes into final per-entity records, applying the null and
// array-shape normalization rules before persistence.
type Assembler struct {
	Classifier *owner.Classifier
	Attributes *source.AttributeSet
}

// NewAssembler builds an assembler around the given classification
// policy and attribute maps.
func NewAssembler(classifier *owner.Classifier, attrs *source.AttributeSet) *Assembler {
	return &Assembler{Classifier: classifier, Attributes: attrs}
}

// Suffixes written abbreviated in source documents get capitalized on
// output ("HWY" -> "Hwy"); long forms pass through as matched.
var shortSuffixes = map[string]bool{
	"PKWY": true, "BLVD": true, "AVE": true, "RD": true, "ST": true,
	"LN": true, "DR": true, "CT": true, "PL": true, "HWY": true,
	"WAY": true, "CIR": true, "TRL": true, "TER": true, "PLZ": true,
}

func suffixType(raw string) *string {
	if raw == "" {
		return nil
	}
	if shortSuffixes[strings.ToUpper(raw)] {
		s := normalize.TitleCase(raw)
		return &s
	}
	return &raw
}

// BuildAddress produces the resolved address record. The winning
// candidate is the source of truth: its street text is decomposed into
// directional and suffix components, and its number, city, postcode, and
// coordinates are carried verbatim. The parsed fields only selected the
// candidate; the parsed unit is used solely when the candidate has none.
func (a *Assembler) BuildAddress(seed source.SeedRow, parsed address.Parsed, match *address.Match) Address {
	cand := match.Candidate
	preDir, streetName, suffix, postDir := address.DecomposeStreet(cand.Street)

	unit := cand.Unit.String()
	if unit == "" {
		unit = parsed.Unit
	}

	return Address{
		SourceHTTPRequest: HTTPRequest{
			Method:                seed.Method,
			URL:                   seed.URL,
			MultiValueQueryString: seed.MultiValueQueryString,
		},
		RequestIdentifier:         seed.ParcelID,
		CityName:                  strings.ToUpper(cand.City.String()),
		CountryCode:               "US",
		CountyName:                seed.County,
		Latitude:                  cand.Latitude(),
		Longitude:                 cand.Longitude(),
		PostalCode:                cand.Postcode.String(),
		StateCode:                 "FL",
		StreetName:                streetName,
		StreetPreDirectionalText:  nullable(preDir),
		StreetPostDirectionalText: nullable(postDir),
		StreetNumber:              cand.Number.String(),
		StreetSuffixType:          suffixType(suffix),
		UnitIdentifier:            nullable(unit),
	}
}

// BuildProperty produces the parcel-level record, enriched with the
// structure attributes when present.
func (a *Assembler) BuildProperty(parcelID string, doc *source.Document) Property {
	p := Property{
		SourceHTTPRequest:            DetailRequest(parcelID),
		RequestIdentifier:            parcelID,
		PropertyLegalDescriptionText: nullable(doc.LegalDescription),
	}
	if doc.ParcelIdentifier != "" {
		pcn := strings.ReplaceAll(doc.ParcelIdentifier, "-", "")
		p.ParcelIdentifier = &pcn
	}
	if sdata, ok := a.Attributes.Structure[source.PropertyKey(parcelID)]; ok {
		if area, ok := sdata["area"].(string); ok {
			p.LivableFloorArea = nullable(area)
		}
		if stories, ok := asInt(sdata["number_of_stories"]); ok {
			p.PropertyStructureBuiltYear = &stories
		}
	}
	return p
}

// BuildSales turns the pre-extracted sales rows into sale records plus
// the sequence-numbered events the linker consumes. Row order is
// authoritative; dates normalize to ISO when parseable and zero prices
// become null.
func (a *Assembler) BuildSales(parcelID string, rows []source.SaleRow) ([]Sale, []linker.SaleEvent) {
	sales := make([]Sale, 0, len(rows))
	events := make([]linker.SaleEvent, 0, len(rows))
	for _, row := range rows {
		price := normalize.NonZeroAmount(normalize.ParseCurrency(row.Price))
		sales = append(sales, Sale{
			SourceHTTPRequest:     DetailRequest(parcelID),
			RequestIdentifier:     parcelID,
			OwnershipTransferDate: nullable(normalize.ISODate(row.Date)),
			PurchasePriceAmount:   price,
		})
		events = append(events, linker.SaleEvent{TransferDate: row.Date, Price: price})
	}
	return sales, linker.NumberSales(events)
}

// BuildOwnerEntries classifies every ledger name, preserving ledger
// date order and per-date list order.
func (a *Assembler) BuildOwnerEntries(ledger *owner.Ledger) []linker.Entry {
	var entries []linker.Entry
	for _, date := range ledger.Dates() {
		entry := linker.Entry{Date: date}
		for _, name := range ledger.Owners(date) {
			entry.Owners = append(entry.Owners, a.Classifier.Classify(name))
		}
		entries = append(entries, entry)
	}
	return entries
}

// OwnerRecord is one owner entity with its file slot.
type OwnerRecord struct {
	Slot    string
	Person  *Person
	Company *Company
}

// BuildOwnerRecords materializes person/company records for every
// classified owner, linked or not.
func (a *Assembler) BuildOwnerRecords(parcelID string, entries []linker.Entry) []OwnerRecord {
	var out []OwnerRecord
	for i, entry := range entries {
		for j, owned := range entry.Owners {
			rec := OwnerRecord{Slot: linker.OwnerSlot(owned.Kind, i+1, j+1)}
			if owned.Kind == owner.KindCompany {
				rec.Company = &Company{
					SourceHTTPRequest: DetailRequest(parcelID),
					RequestIdentifier: parcelID,
					Name:              owned.Company,
				}
			} else {
				rec.Person = &Person{
					SourceHTTPRequest: DetailRequest(parcelID),
					RequestIdentifier: parcelID,
					FirstName:         nullable(owned.Person.First),
					LastName:          nullable(owned.Person.Last),
					MiddleName:        nullable(owned.Person.Middle),
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

// BuildRelationships converts linker output into persisted link
// descriptors with their file names.
func (a *Assembler) BuildRelationships(links []linker.Link) map[string]Relationship {
	out := make(map[string]Relationship, len(links))
	for _, l := range links {
		out[l.RelationshipFile()] = Relationship{
			To:   FileRef{Path: "./" + l.OwnerFile() + ".json"},
			From: FileRef{Path: "./" + l.SaleFile() + ".json"},
		}
	}
	return out
}

// BuildTaxes produces one record per assessment year. Zero monetary
// values become null ("not reported"); the land amount is the exception,
// clamped to a positive two-decimal value because the record contract
// requires a positive number.
func (a *Assembler) BuildTaxes(parcelID string, years []source.TaxYear) []Tax {
	taxes := make([]Tax, 0, len(years))
	for _, y := range years {
		t := Tax{
			SourceHTTPRequest:           DetailRequest(parcelID),
			RequestIdentifier:           parcelID,
			PropertyAssessedValueAmount: normalize.NonZeroAmount(normalize.ParseCurrency(y.Assessed)),
			PropertyMarketValueAmount:   normalize.NonZeroAmount(normalize.ParseCurrency(y.Market)),
			PropertyBuildingAmount:      normalize.NonZeroAmount(normalize.ParseCurrency(y.Improvement)),
			PropertyTaxableValueAmount:  normalize.NonZeroAmount(normalize.ParseCurrency(y.Taxable)),
			PropertyLandAmount:          landAmount(normalize.ParseCurrency(y.Land)),
		}
		if year, err := strconv.Atoi(strings.TrimSpace(y.Year)); err == nil {
			t.TaxYear = &year
		}
		taxes = append(taxes, t)
	}
	return taxes
}

func landAmount(v *float64) *float64 {
	land := 0.01
	if v != nil && *v > 0 {
		land = math.Round(*v*100) / 100
	}
	return &land
}

// Structure fields allowed through to structure.json; extraction
// intermediates like number_of_stories and area stay behind.
var structureFields = []string{
	"source_http_request", "request_identifier", "architectural_style_type",
	"attachment_type", "exterior_wall_material_primary",
	"exterior_wall_material_secondary", "exterior_wall_condition",
	"exterior_wall_insulation_type", "flooring_material_primary",
	"flooring_material_secondary", "subfloor_material", "flooring_condition",
	"interior_wall_structure_material", "interior_wall_surface_material_primary",
	"interior_wall_surface_material_secondary", "interior_wall_finish_primary",
	"interior_wall_finish_secondary", "interior_wall_condition",
	"roof_covering_material", "roof_underlayment_type", "roof_structure_material",
	"roof_design_type", "roof_condition", "roof_age_years", "gutters_material",
	"gutters_condition", "roof_material_type", "foundation_type",
	"foundation_material", "foundation_waterproofing", "foundation_condition",
	"ceiling_structure_material", "ceiling_surface_material",
	"ceiling_insulation_type", "ceiling_height_average", "ceiling_condition",
	"exterior_door_material", "interior_door_material", "window_frame_material",
	"window_glazing_type", "window_operation_type", "window_screen_material",
	"primary_framing_material", "secondary_framing_material",
	"structural_damage_indicators",
}

// BuildStructure filters the collaborator's structure attributes down to
// the persisted field set. Nil when the parcel has no structure data.
func (a *Assembler) BuildStructure(parcelID string) map[string]any {
	sdata, ok := a.Attributes.Structure[source.PropertyKey(parcelID)]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(structureFields))
	for _, field := range structureFields {
		if v, ok := sdata[field]; ok {
			out[field] = v
		}
	}
	return out
}

// validSmartFeatures is the smart_home_features enum; anything else is
// coerced to "Other".
var validSmartFeatures = map[string]bool{
	"SmartThermostat": true, "SmartLighting": true, "SmartLocks": true,
	"SmartSecuritySystem": true, "SmartIrrigation": true,
	"VoiceControlIntegration": true, "EnergyMonitoring": true, "Other": true,
}

// BuildUtility returns the utility attributes with the
// smart_home_features array coerced into shape: always at least one
// element, every element a valid enum value. Nil when the parcel has no
// utility data.
func (a *Assembler) BuildUtility(parcelID string) map[string]any {
	udata, ok := a.Attributes.Utility[source.PropertyKey(parcelID)]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(udata))
	for k, v := range udata {
		out[k] = v
	}

	features, ok := out["smart_home_features"].([]any)
	if !ok || len(features) == 0 {
		out["smart_home_features"] = []any{"Other"}
		return out
	}
	fixed := make([]any, len(features))
	for i, f := range features {
		if s, ok := f.(string); ok && validSmartFeatures[s] {
			fixed[i] = s
		} else {
			fixed[i] = "Other"
		}
	}
	out["smart_home_features"] = fixed
	return out
}

// BuildLot clamps the raw land measurements to the record contract's
// positive minimums.
func (a *Assembler) BuildLot(parcelID string, lot source.LotDetails) Lot {
	area, width, length := lot.AreaSqft, lot.WidthFeet, lot.LengthFeet
	if area <= 0 {
		area = 1000
	}
	if width <= 0 {
		width = 50
	}
	if length <= 0 {
		length = 50
	}
	return Lot{
		SourceHTTPRequest: DetailRequest(parcelID),
		RequestIdentifier: parcelID,
		LotType:           "LessThanOrEqualToOneQuarterAcre",
		LotLengthFeet:     length,
		LotWidthFeet:      width,
		LotAreaSqft:       area,
	}
}

// BuildLayouts replicates the parcel's layout template once per counted
// bedroom, full bath, and half bath, stamping the space type on each
// copy.
func (a *Assembler) BuildLayouts(parcelID string, rooms source.RoomCounts) []map[string]any {
	var layouts []map[string]any
	add := func(count int, spaceType string) {
		for i := 0; i < count; i++ {
			l := a.Attributes.LayoutTemplate(parcelID)
			if l == nil {
				l = map[string]any{}
			}
			l["space_type"] = spaceType
			layouts = append(layouts, l)
		}
	}
	add(rooms.Bedrooms, "Bedroom")
	add(rooms.FullBaths, "Full Bathroom")
	add(rooms.HalfBaths, "Half Bathroom / Powder Room")
	return layouts
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
