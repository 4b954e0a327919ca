package phone

import "testing"

func TestClassify_Landlines(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCty  Country
		wantCity string
	}{
		{"coventry international", "+442476112233", CountryUK, "Coventry"},
		{"coventry 00 prefix", "00442476112233", CountryUK, "Coventry"},
		{"coventry bare cc", "442476112233", CountryUK, "Coventry"},
		{"coventry national", "02476112233", CountryUK, "Coventry"},
		{"coventry spaced", "+44 24 7611 2233", CountryUK, "Coventry"},
		{"coventry hyphenated", "024-7611-2233", CountryUK, "Coventry"},
		{"london", "+442071234567", CountryUK, "London"},
		{"birmingham", "01214960000", CountryUK, "Birmingham"},
		{"warwick four digit code", "+441926330000", CountryUK, "Warwick"},
		{"rugby", "01788550000", CountryUK, "Rugby"},
		{"manchester", "+441612345678", CountryUK, "Manchester"},
		{"amsterdam", "+31201234567", CountryNL, "Amsterdam"},
		{"rotterdam", "0031101234567", CountryNL, "Rotterdam"},
		{"the hague", "+31701234567", CountryNL, "The Hague"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.phone)
			if got.Country != tt.wantCty {
				t.Errorf("Classify(%q).Country = %q, want %q", tt.phone, got.Country, tt.wantCty)
			}
			if got.City != tt.wantCity {
				t.Errorf("Classify(%q).City = %q, want %q", tt.phone, got.City, tt.wantCity)
			}
			if got.IsMobile {
				t.Errorf("Classify(%q).IsMobile = true, want false", tt.phone)
			}
		})
	}
}

func TestClassify_Mobiles(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantCty Country
	}{
		{"uk international", "+447911123456", CountryUK},
		{"uk national", "07911123456", CountryUK},
		{"uk 00 prefix", "00447911123456", CountryUK},
		// Trailing digits that happen to look like an area code must not
		// produce a city once the mobile range matched.
		{"uk mobile with area-like tail", "+447024761122", CountryUK},
		{"nl international", "+31612345678", CountryNL},
		{"nl 00 prefix", "0031612345678", CountryNL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.phone)
			if got.Country != tt.wantCty {
				t.Errorf("Classify(%q).Country = %q, want %q", tt.phone, got.Country, tt.wantCty)
			}
			if !got.IsMobile {
				t.Errorf("Classify(%q).IsMobile = false, want true", tt.phone)
			}
			if got.City != "" {
				t.Errorf("Classify(%q).City = %q, want empty", tt.phone, got.City)
			}
		})
	}
}

func TestClassify_LongerCodesWin(t *testing.T) {
	// 1926 (Warwick) must not be shadowed by a shorter code that is a
	// prefix of it, and 1203 (legacy Coventry) must beat 120x-style
	// two-digit fallbacks.
	got := Classify("+441926778899")
	if got.City != "Warwick" {
		t.Errorf("expected Warwick, got %q", got.City)
	}
	got = Classify("01203445566")
	if got.City != "Coventry" {
		t.Errorf("expected Coventry for legacy 01203, got %q", got.City)
	}
}

func TestClassify_UnknownInput(t *testing.T) {
	for _, phone := range []string{"", "12345", "+15551234567", "anonymous"} {
		got := Classify(phone)
		if got.Country != CountryUnknown {
			t.Errorf("Classify(%q).Country = %q, want Unknown", phone, got.Country)
		}
		if !got.IsMobile {
			t.Errorf("Classify(%q) should fail open as mobile (no geographic prior)", phone)
		}
		if got.City != "" {
			t.Errorf("Classify(%q).City = %q, want empty", phone, got.City)
		}
	}
}

func TestClassify_CountryWithoutCity(t *testing.T) {
	// Valid UK landline range with no table entry keeps the country.
	got := Classify("+441234567890")
	if got.Country != CountryUK || got.City != "" || got.IsMobile {
		t.Errorf("unexpected region: %+v", got)
	}
}
