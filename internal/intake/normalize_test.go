package intake

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+55 (11) 98765-4321", "5511987654321", true},
		{"11987654321", "11987654321", true},
		{"(11) 3456-7890", "1134567890", true},
		{"98765-432", "98765432", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizePhone(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"123.456.789-01", "12345678901", true},
		{"12345678901", "12345678901", true},
		{"", "", true},
		{"   ", "", true},
		{"123.456.789-0", "1234567890", false},
		{"123456789012", "123456789012", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeCPF(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeCPF(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStripNonDigits(t *testing.T) {
	if got := StripNonDigits("+1 (555) abc 123"); got != "1555123" {
		t.Fatalf("StripNonDigits = %q, want 1555123", got)
	}
}
