package api

import (
	"net/http/httptest"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"ana@clinica.com.br", "a.b+c@dominio.io"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v; esperava nil", e, err)
		}
	}
	invalid := []string{"", "sem-arroba", "a@b", "a @b.com", "a@b .com"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) = nil; esperava erro", e)
		}
	}
}

func TestParseMonthYear(t *testing.T) {
	cases := []struct {
		query   string
		month   int
		year    int
		wantErr bool
	}{
		{"mes=3&ano=2025", 3, 2025, false},
		{"mes=12&ano=2030", 12, 2030, false},
		{"mes=0&ano=2025", 0, 0, true},
		{"mes=13&ano=2025", 0, 0, true},
		{"mes=3&ano=1999", 0, 0, true},
		{"mes=3", 0, 0, true},
		{"ano=2025", 0, 0, true},
		{"mes=abc&ano=2025", 0, 0, true},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/?"+tc.query, nil)
		m, y, err := ParseMonthYear(r)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMonthYear(%q) = %d/%d; esperava erro", tc.query, m, y)
			}
			continue
		}
		if err != nil || m != tc.month || y != tc.year {
			t.Errorf("ParseMonthYear(%q) = %d/%d, %v; esperava %d/%d", tc.query, m, y, err, tc.month, tc.year)
		}
	}
}

func TestParseLimitOffset(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=50&offset=10", nil)
	limit, offset := ParseLimitOffset(r)
	if limit != 50 || offset != 10 {
		t.Errorf("limit/offset = %d/%d; esperava 50/10", limit, offset)
	}
	r = httptest.NewRequest("GET", "/?limit=500", nil)
	limit, _ = ParseLimitOffset(r)
	if limit != maxLimit {
		t.Errorf("limit acima do teto = %d; esperava %d", limit, maxLimit)
	}
	r = httptest.NewRequest("GET", "/", nil)
	limit, offset = ParseLimitOffset(r)
	if limit != defaultLimit || offset != 0 {
		t.Errorf("default = %d/%d", limit, offset)
	}
}
