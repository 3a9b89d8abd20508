package domain

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme Co", "acme-co"},
		{"apostrophe", "Ollie's Bargain Outlet", "ollie-s-bargain-outlet"},
		{"collapses runs", "A  --  B", "a-b"},
		{"trims edges", "  Acme!  ", "acme"},
		{"already slug", "acme-co", "acme-co"},
		{"digits", "Studio 54", "studio-54"},
		{"empty", "", ""},
		{"no alphanumerics", "!!! ???", ""},
		{"unicode stripped", "Café Münster", "caf-m-nster"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Slugify(tc.in)
			if got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Acme Co", "Ollie's Bargain Outlet", "a--b--c", "", "Studio 54 NYC"}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Fatalf("Slugify not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
