package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCarrier(t *testing.T) {
	supported := []SupportedCarrier{
		{Code: "PUROLATOR", Title: "Purolator"},
		{Code: "ONTRAC", Title: "OnTrac"},
	}

	tests := []struct {
		name  string
		code  string
		title string
		want  string
	}{
		{"non-custom code is passed through uppercased", "fedex", "whatever", "FEDEX"},
		{"custom code resolves against well-known names", CarrierCodeCustom, "UPS Ground", "UPS"},
		{"long-form carrier name", CarrierCodeCustom, "United Parcel Service Next Day", "UPS"},
		{"postal service", CarrierCodeCustom, "USPS Priority Mail", "USPS"},
		{"international carrier", CarrierCodeCustom, "DHL Express Worldwide", "DHL"},
		{"multi word carrier", CarrierCodeCustom, "Canada Post Expedited", "CANADA_POST"},
		{"supported table matched by code", CarrierCodeCustom, "ontrac ground", "ONTRAC"},
		{"supported table matched by title", CarrierCodeCustom, "Purolator Express 9AM", "PUROLATOR"},
		{"unknown carrier falls back to OTHER", CarrierCodeCustom, "Carrier Pigeon Deluxe", CarrierCodeOther},
		{"empty title falls back to OTHER", CarrierCodeCustom, "", CarrierCodeOther},
		{"empty code and title", "", "  ", CarrierCodeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCarrier(tt.code, tt.title, supported))
		})
	}
}

func TestResolveCarrier_WellKnownBeatsSupportedTable(t *testing.T) {
	// "ups store" matches both the well-known table and a hypothetical
	// supported entry; the well-known mapping wins.
	supported := []SupportedCarrier{{Code: "STORE", Title: "UPS Store"}}
	assert.Equal(t, "UPS", ResolveCarrier(CarrierCodeCustom, "The UPS Store", supported))
}
