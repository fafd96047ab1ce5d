// Package records defines the per-entity output records and the
// assembler that merges core resolution results with collaborator
// attributes into their final persisted shape.
package records

// HTTPRequest is the provenance stamp carried by every record: how the
// source document was originally requested.
type HTTPRequest struct {
	Method                string              `json:"method"`
	URL                   string              `json:"url"`
	MultiValueQueryString map[string][]string `json:"multiValueQueryString,omitempty"`
}

// DetailRequest reconstructs the property-detail request for records
// whose seed row carries no provenance of its own.
func DetailRequest(parcelID string) HTTPRequest {
	return HTTPRequest{
		Method: "GET",
		URL:    "https://pbcpao.gov/Property/Details?parcelID=" + parcelID,
	}
}

// Address is the resolved address record: the winning candidate merged
// with the decomposed street components.
type Address struct {
	SourceHTTPRequest         HTTPRequest `json:"source_http_request"`
	RequestIdentifier         string      `json:"request_identifier"`
	CityName                  string      `json:"city_name"`
	CountryCode               string      `json:"country_code"`
	CountyName                string      `json:"county_name"`
	Latitude                  float64     `json:"latitude"`
	Longitude                 float64     `json:"longitude"`
	PlusFourPostalCode        *string     `json:"plus_four_postal_code"`
	PostalCode                string      `json:"postal_code"`
	StateCode                 string      `json:"state_code"`
	StreetName                string      `json:"street_name"`
	StreetPostDirectionalText *string     `json:"street_post_directional_text"`
	StreetPreDirectionalText  *string     `json:"street_pre_directional_text"`
	StreetNumber              string      `json:"street_number"`
	StreetSuffixType          *string     `json:"street_suffix_type"`
	UnitIdentifier            *string     `json:"unit_identifier"`
	Township                  *string     `json:"township"`
	Range                     *string     `json:"range"`
	Section                   *string     `json:"section"`
	Block                     *string     `json:"block"`
}

// Property is the parcel-level record.
type Property struct {
	SourceHTTPRequest            HTTPRequest `json:"source_http_request"`
	RequestIdentifier            string      `json:"request_identifier"`
	LivableFloorArea             *string     `json:"livable_floor_area"`
	NumberOfUnitsType            *string     `json:"number_of_units_type"`
	ParcelIdentifier             *string     `json:"parcel_identifier"`
	PropertyLegalDescriptionText *string     `json:"property_legal_description_text"`
	PropertyStructureBuiltYear   *int        `json:"property_structure_built_year"`
	PropertyType                 *string     `json:"property_type"`
}

// Sale is one ownership-transfer event in document row order.
type Sale struct {
	SourceHTTPRequest     HTTPRequest `json:"source_http_request"`
	RequestIdentifier     string      `json:"request_identifier"`
	OwnershipTransferDate *string     `json:"ownership_transfer_date"`
	PurchasePriceAmount   *float64    `json:"purchase_price_amount"`
}

// Tax is one assessment year's record.
type Tax struct {
	SourceHTTPRequest           HTTPRequest `json:"source_http_request"`
	RequestIdentifier           string      `json:"request_identifier"`
	TaxYear                     *int        `json:"tax_year"`
	PropertyAssessedValueAmount *float64    `json:"property_assessed_value_amount"`
	PropertyMarketValueAmount   *float64    `json:"property_market_value_amount"`
	PropertyBuildingAmount      *float64    `json:"property_building_amount"`
	PropertyLandAmount          *float64    `json:"property_land_amount"`
	PropertyTaxableValueAmount  *float64    `json:"property_taxable_value_amount"`
	MonthlyTaxAmount            *float64    `json:"monthly_tax_amount"`
	PeriodEndDate               *string     `json:"period_end_date"`
	PeriodStartDate             *string     `json:"period_start_date"`
}

// Person is one owner entity of kind person.
type Person struct {
	SourceHTTPRequest   HTTPRequest `json:"source_http_request"`
	RequestIdentifier   string      `json:"request_identifier"`
	BirthDate           *string     `json:"birth_date"`
	FirstName           *string     `json:"first_name"`
	LastName            *string     `json:"last_name"`
	MiddleName          *string     `json:"middle_name"`
	PrefixName          *string     `json:"prefix_name"`
	SuffixName          *string     `json:"suffix_name"`
	USCitizenshipStatus *string     `json:"us_citizenship_status"`
	VeteranStatus       *bool       `json:"veteran_status"`
}

// Company is one owner entity of kind company.
type Company struct {
	SourceHTTPRequest HTTPRequest `json:"source_http_request"`
	RequestIdentifier string      `json:"request_identifier"`
	Name              string      `json:"name"`
}

// Lot is the land record, always emitted with clamped measurements.
type Lot struct {
	SourceHTTPRequest   HTTPRequest `json:"source_http_request"`
	RequestIdentifier   string      `json:"request_identifier"`
	LotType             string      `json:"lot_type"`
	LotLengthFeet       int         `json:"lot_length_feet"`
	LotWidthFeet        int         `json:"lot_width_feet"`
	LotAreaSqft         int         `json:"lot_area_sqft"`
	LandscapingFeatures *string     `json:"landscaping_features"`
	View                *string     `json:"view"`
	FencingType         *string     `json:"fencing_type"`
	FenceHeight         *string     `json:"fence_height"`
	FenceLength         *string     `json:"fence_length"`
	DrivewayMaterial    *string     `json:"driveway_material"`
	DrivewayCondition   *string     `json:"driveway_condition"`
	LotConditionIssues  *string     `json:"lot_condition_issues"`
}

// FileRef is an entity-file pointer in the persisted link shape.
type FileRef struct {
	Path string `json:"/"`
}

// Relationship links an owner entity file to a sale entity file.
type Relationship struct {
	To   FileRef `json:"to"`
	From FileRef `json:"from"`
}

// nullable returns nil for the empty string so absent components
// serialize as JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
