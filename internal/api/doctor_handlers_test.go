package api

import (
	"testing"
)

func TestParseContractTerms(t *testing.T) {
	ptr := func(s string) *string { return &s }
	cases := []struct {
		kind     string
		rate     *string
		wantKind string
		wantErr  bool
	}{
		{"ALUGUEL", ptr("150.00"), "ALUGUEL", false},
		{"aluguel", ptr("150.00"), "ALUGUEL", false},
		{"PARCERIA", ptr("30"), "PARCERIA", false},
		{"PARCERIA", ptr("100"), "PARCERIA", false},
		{"PARCERIA", ptr("100.01"), "", true},
		{"ALUGUEL", ptr("-1"), "", true},
		{"ALUGUEL", nil, "", true},
		{"OUTRO", ptr("10"), "", true},
		{"", ptr("10"), "", true},
	}
	for _, tc := range cases {
		kind, _, err := parseContractTerms(tc.kind, tc.rate)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseContractTerms(%q) = %q; esperava erro", tc.kind, kind)
			}
			continue
		}
		if err != nil || kind != tc.wantKind {
			t.Errorf("parseContractTerms(%q) = %q, %v; esperava %q", tc.kind, kind, err, tc.wantKind)
		}
	}
}
