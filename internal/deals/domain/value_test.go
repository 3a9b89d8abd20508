package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestAmountFromValue(t *testing.T) {
	cases := []struct {
		name  string
		value *string
		want  int
	}{
		{"nil", nil, 0},
		{"empty", strPtr(""), 0},
		{"plain dollars", strPtr("$2,000"), 2000},
		{"no separator", strPtr("$500"), 500},
		{"bare number", strPtr("1500"), 1500},
		{"gift only", strPtr("Gift + exposure"), 0},
		{"mixed", strPtr("gift + $1,250 paid"), 1250},
		{"range takes first", strPtr("$500-$1,000"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AmountFromValue(tc.value)
			if got != tc.want {
				t.Fatalf("AmountFromValue(%v) = %d, want %d", tc.value, got, tc.want)
			}
		})
	}
}
