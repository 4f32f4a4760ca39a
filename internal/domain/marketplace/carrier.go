package marketplace

import "strings"

const (
	// CarrierCodeCustom is the local sentinel for a free-text carrier
	CarrierCodeCustom = "CUSTOM"
	// CarrierCodeOther is the platform's catch-all carrier code
	CarrierCodeOther = "OTHER"
)

// wellKnownCarriers maps long-form carrier names to their canonical codes.
// Matching is a case-insensitive substring test against the shipment title.
var wellKnownCarriers = []struct {
	name string
	code string
}{
	{"united parcel service", "UPS"},
	{"ups", "UPS"},
	{"federal express", "FEDEX"},
	{"fedex", "FEDEX"},
	{"united states postal", "USPS"},
	{"usps", "USPS"},
	{"dhl", "DHL"},
	{"canada post", "CANADA_POST"},
	{"royal mail", "ROYAL_MAIL"},
	{"australia post", "AUSTRALIA_POST"},
}

// SupportedCarrier is one entry of the platform's carrier enumeration
type SupportedCarrier struct {
	Code  string
	Title string
}

// ResolveCarrier maps a local shipment's carrier code and free-text title
// to a canonical code the platform accepts. A non-custom local code is
// already canonical. A custom code is matched against the well-known
// carrier table first, then against the platform's supported-carrier
// table, both by case-insensitive substring on code and title. Unresolved
// carriers fall back to CarrierCodeOther.
func ResolveCarrier(carrierCode, carrierTitle string, supported []SupportedCarrier) string {
	code := strings.ToUpper(strings.TrimSpace(carrierCode))
	if code != "" && code != CarrierCodeCustom {
		return code
	}

	title := strings.ToLower(strings.TrimSpace(carrierTitle))
	if title == "" {
		return CarrierCodeOther
	}

	for _, c := range wellKnownCarriers {
		if strings.Contains(title, c.name) || strings.Contains(title, strings.ToLower(c.code)) {
			return c.code
		}
	}

	for _, c := range supported {
		candidateCode := strings.ToLower(c.Code)
		candidateTitle := strings.ToLower(c.Title)
		if candidateCode != "" && strings.Contains(title, candidateCode) {
			return strings.ToUpper(c.Code)
		}
		if candidateTitle != "" && strings.Contains(title, candidateTitle) {
			return strings.ToUpper(c.Code)
		}
	}

	return CarrierCodeOther
}
