// Package phone derives a geographic prior from a caller's phone number.
// Classification is deterministic, table-driven and does no I/O, so it is
// cheap enough to recompute on every request.
package phone

import "strings"

// Country is the serviced dialling region a number belongs to.
type Country string

const (
	CountryUK      Country = "UK"
	CountryNL      Country = "NL"
	CountryUnknown Country = "Unknown"
)

// Region is the geographic prior derived from a phone number.
type Region struct {
	Country  Country `json:"country"`
	City     string  `json:"city,omitempty"`
	IsMobile bool    `json:"is_mobile"`
}

// areaCode maps a national dialling code (leading zero stripped) to a city.
// Codes MUST be ordered longest first within a country so that a specific
// code is never shadowed by a shorter prefix (e.g. 1926 before 19).
type areaCode struct {
	code string
	city string
}

var ukAreaCodes = []areaCode{
	{"1926", "Warwick"},
	{"1788", "Rugby"},
	{"1827", "Tamworth"},
	{"1455", "Hinckley"},
	{"1203", "Coventry"}, // legacy Coventry code, still dialled by older callers
	{"121", "Birmingham"},
	{"113", "Leeds"},
	{"114", "Sheffield"},
	{"115", "Nottingham"},
	{"116", "Leicester"},
	{"117", "Bristol"},
	{"118", "Reading"},
	{"131", "Edinburgh"},
	{"141", "Glasgow"},
	{"151", "Liverpool"},
	{"161", "Manchester"},
	{"191", "Newcastle"},
	{"24", "Coventry"},
	{"20", "London"},
	{"28", "Belfast"},
	{"29", "Cardiff"},
}

var nlAreaCodes = []areaCode{
	{"20", "Amsterdam"},
	{"10", "Rotterdam"},
	{"70", "The Hague"},
	{"30", "Utrecht"},
	{"40", "Eindhoven"},
	{"50", "Groningen"},
	{"13", "Tilburg"},
	{"76", "Breda"},
	{"24", "Nijmegen"},
}

// Classify maps a raw phone string to a Region. Unrecognised input fails
// open toward "no geographic prior": Unknown country, no city, mobile.
func Classify(rawPhone string) Region {
	digits := normalize(rawPhone)

	if national, ok := stripCountryPrefix(digits, "44"); ok {
		return classifyNational(CountryUK, national, "7", ukAreaCodes)
	}
	if national, ok := stripCountryPrefix(digits, "31"); ok {
		return classifyNational(CountryNL, national, "6", nlAreaCodes)
	}

	// Bare national format with a UK-style trunk zero.
	if strings.HasPrefix(digits, "0") {
		return classifyNational(CountryUK, strings.TrimPrefix(digits, "0"), "7", ukAreaCodes)
	}

	return Region{Country: CountryUnknown, IsMobile: true}
}

func classifyNational(country Country, national, mobilePrefix string, table []areaCode) Region {
	if national == "" {
		return Region{Country: country}
	}
	if strings.HasPrefix(national, mobilePrefix) {
		return Region{Country: country, IsMobile: true}
	}
	for _, ac := range table {
		if strings.HasPrefix(national, ac.code) {
			return Region{Country: country, City: ac.city}
		}
	}
	return Region{Country: country}
}

// stripCountryPrefix removes one of the accepted spellings of an
// international prefix (+CC, 00CC, bare CC) and any trunk zero that
// follows it. The bare-CC form is checked last since it is the most
// ambiguous.
func stripCountryPrefix(digits, cc string) (string, bool) {
	for _, prefix := range []string{"+" + cc, "00" + cc, cc} {
		if strings.HasPrefix(digits, prefix) {
			rest := strings.TrimPrefix(digits, prefix)
			return strings.TrimPrefix(rest, "0"), true
		}
	}
	return "", false
}

func normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
