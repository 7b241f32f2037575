package util

import "testing"

func TestAlnumPrefix(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"ab060x", 5, "AB060"},
		{"AB-060X", 5, "AB060"},
		{"AB", 5, "AB"},
		{"zhg04n4b", 5, "ZHG04"},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := AlnumPrefix(tc.in, tc.n); got != tc.want {
			t.Fatalf("AlnumPrefix(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestAllDigits(t *testing.T) {
	if !AllDigits("060") || AllDigits("06X") || AllDigits("") {
		t.Fatal("AllDigits misclassified")
	}
}

func TestJoinNonEmpty(t *testing.T) {
	if got := JoinNonEmpty(", ", "400 Oak Ave", " ", "Springfield", ""); got != "400 Oak Ave, Springfield" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("  two   units \n here "); got != "two units here" {
		t.Fatalf("got %q", got)
	}
}
