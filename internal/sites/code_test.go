package sites

import "testing"

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"  main kitchen ": "MAIN-KITCHEN",
		"north_wing":      "NORTH-WING",
		"A-1":             "A-1",
		"":                "",
		"mixed_Case here": "MIXED-CASE-HERE",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", in, got, want)
		}
	}
}
