package address

import "encoding/json"

// Parsed holds the structured components of a free-text address string.
// Empty string means the component is absent. A Parsed value is only used
// to select a candidate; it is never persisted.
type Parsed struct {
	Number          string
	PreDirectional  string
	Street          string
	Suffix          string
	PostDirectional string
	Unit            string
}

// Candidate is one geocoded address alternative supplied by the external
// lookup. Read-only; a parcel may have zero or more.
type Candidate struct {
	Number      FlexString `json:"number"`
	Street      string     `json:"street"`
	Unit        FlexString `json:"unit"`
	City        FlexString `json:"city"`
	Postcode    FlexString `json:"postcode"`
	Coordinates [2]float64 `json:"coordinates"` // lon, lat
}

// Longitude returns the first coordinate component.
func (c Candidate) Longitude() float64 { return c.Coordinates[0] }

// Latitude returns the second coordinate component.
func (c Candidate) Latitude() float64 { return c.Coordinates[1] }

// FlexString tolerates the lookup files' mixed typing: the same field may
// arrive as a JSON string, a number, or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
