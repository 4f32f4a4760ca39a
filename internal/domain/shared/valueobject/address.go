package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a postal address on a local order.
// It is immutable - all mutations return new Address instances. Billing and
// shipping addresses on an order are both of this type; cloning billing to
// shipping is a plain value copy.
type Address struct {
	firstName  string
	lastName   string
	street     string
	city       string
	region     string
	postalCode string
	country    string
	telephone  string
	email      string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithTelephone sets the telephone number
func WithTelephone(telephone string) AddressOption {
	return func(a *Address) {
		a.telephone = strings.TrimSpace(telephone)
	}
}

// WithEmail sets the contact email
func WithEmail(email string) AddressOption {
	return func(a *Address) {
		a.email = strings.TrimSpace(email)
	}
}

// NewAddress creates a new Address. All fields are optional at construction;
// completeness is checked where the address is actually used (see MissingFields).
func NewAddress(firstName, lastName, street, city, region, postalCode, country string, opts ...AddressOption) Address {
	addr := Address{
		firstName:  strings.TrimSpace(firstName),
		lastName:   strings.TrimSpace(lastName),
		street:     strings.TrimSpace(street),
		city:       strings.TrimSpace(city),
		region:     strings.TrimSpace(region),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}
	for _, opt := range opts {
		opt(&addr)
	}
	return addr
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// FirstName returns the first name
func (a Address) FirstName() string { return a.firstName }

// LastName returns the last name
func (a Address) LastName() string { return a.lastName }

// Street returns the street line
func (a Address) Street() string { return a.street }

// City returns the city
func (a Address) City() string { return a.city }

// Region returns the state/region
func (a Address) Region() string { return a.region }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country code
func (a Address) Country() string { return a.country }

// Telephone returns the telephone number
func (a Address) Telephone() string { return a.telephone }

// Email returns the contact email
func (a Address) Email() string { return a.email }

// FullName returns "First Last", trimmed
func (a Address) FullName() string {
	return strings.TrimSpace(a.firstName + " " + a.lastName)
}

// IsEmpty returns true if the address carries no location data
func (a Address) IsEmpty() bool {
	return a.street == "" && a.city == "" && a.region == "" &&
		a.postalCode == "" && a.country == ""
}

// MissingFields returns the names of location fields that are empty but
// required for a fulfillment address. An empty result means the address is
// complete enough to hand to the marketplace shipment API.
func (a Address) MissingFields() []string {
	var missing []string
	if a.street == "" {
		missing = append(missing, "street")
	}
	if a.country == "" {
		missing = append(missing, "country")
	}
	if a.region == "" {
		missing = append(missing, "state")
	}
	if a.city == "" {
		missing = append(missing, "city")
	}
	if a.postalCode == "" {
		missing = append(missing, "postal_code")
	}
	return missing
}

// IsComplete returns true if no fulfillment-required field is missing
func (a Address) IsComplete() bool {
	return len(a.MissingFields()) == 0
}

// WithRegion returns a new Address with the region replaced
func (a Address) WithRegion(region string) Address {
	a.region = strings.TrimSpace(region)
	return a
}

// WithName returns a new Address with first/last name replaced
func (a Address) WithName(firstName, lastName string) Address {
	a.firstName = strings.TrimSpace(firstName)
	a.lastName = strings.TrimSpace(lastName)
	return a
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns a single-line representation of the address
func (a Address) String() string {
	parts := make([]string, 0, 6)
	if name := a.FullName(); name != "" {
		parts = append(parts, name)
	}
	for _, p := range []string{a.street, a.city, a.region, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// addressJSON is used for JSON marshaling/unmarshaling and database storage
type addressJSON struct {
	FirstName  string `json:"firstname,omitempty"`
	LastName   string `json:"lastname,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Telephone  string `json:"telephone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		FirstName:  a.firstName,
		LastName:   a.lastName,
		Street:     a.street,
		City:       a.city,
		Region:     a.region,
		PostalCode: a.postalCode,
		Country:    a.country,
		Telephone:  a.telephone,
		Email:      a.email,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = NewAddress(v.FirstName, v.LastName, v.Street, v.City, v.Region, v.PostalCode, v.Country,
		WithTelephone(v.Telephone), WithEmail(v.Email))
	return nil
}

// Value implements driver.Valuer for database storage as a JSON column
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() && a.FullName() == "" {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 || string(data) == "null" {
		*a = EmptyAddress()
		return nil
	}
	return json.Unmarshal(data, a)
}
