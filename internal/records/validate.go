package records

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the resolved address before it is written out. An
// address that fails here means the candidate data was malformed, not
// that resolution failed, so the caller records it as a diagnostic.
func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.RequestIdentifier, validation.Required),
		validation.Field(&a.CountryCode, validation.Required, validation.In("US")),
		validation.Field(&a.StateCode, validation.Required),
		validation.Field(&a.StreetNumber, validation.Required),
		validation.Field(&a.StreetName, validation.Required),
		validation.Field(&a.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&a.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// Validate checks the land record's clamped measurements.
func (l Lot) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.RequestIdentifier, validation.Required),
		validation.Field(&l.LotType, validation.Required),
		validation.Field(&l.LotAreaSqft, validation.Min(1)),
		validation.Field(&l.LotWidthFeet, validation.Min(1)),
		validation.Field(&l.LotLengthFeet, validation.Min(1)),
	)
}
