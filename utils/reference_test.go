package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferenceCodeFormat(t *testing.T) {
	for _, entityType := range []ReferenceType{ResellerType, CustomerType, ContractType} {
		code, err := GenerateReferenceCode(entityType)
		if err != nil {
			t.Fatalf("GenerateReferenceCode(%s) failed: %v", entityType, err)
		}

		prefix := string(entityType) + "-"
		if !strings.HasPrefix(code, prefix) {
			t.Errorf("code %q missing prefix %q", code, prefix)
		}

		random := strings.TrimPrefix(code, prefix)
		if len(random) != 6 {
			t.Errorf("code %q: random part has %d characters, want 6", code, len(random))
		}
		for _, r := range random {
			if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Errorf("code %q contains invalid character %q", code, r)
			}
		}
	}
}

func TestGenerateReferenceCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateResellerReferenceCode()
		if err != nil {
			t.Fatal(err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d generations", code, i)
		}
		seen[code] = true
	}
}

func TestSanitizeEmail(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  Reseller@Example.COM ", "reseller@example.com", false},
		{"plain@example.com", "plain@example.com", false},
		{"not-an-email", "", true},
		{"missing@domain", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := SanitizeEmail(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("SanitizeEmail(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeInputStripsMarkup(t *testing.T) {
	got := SanitizeInput("  <b>Acme</b> Trading  ")
	if strings.Contains(got, "<b>") {
		t.Errorf("SanitizeInput left raw markup: %q", got)
	}
	if strings.HasPrefix(got, " ") || strings.HasSuffix(got, " ") {
		t.Errorf("SanitizeInput left surrounding whitespace: %q", got)
	}
}
