package render

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"hi", `"hi"`},
		{`say "x"`, `"say \"x\""`},
		{`a\b`, `"a\\b"`},
		{"a\nb\tc\r", `"a\nb\tc\r"`},
		{"\b\f", `"\b\f"`},
		{"bell\a", `"bell\u0007"`},
		{"vt\v", `"vt\u000b"`},
		{"\x00\x7f", `"\u0000\u007f"`},
		{"nb\u00a0sp", `"nb\u00a0sp"`},
		{"café 中", "\"café 中\""},
		{"\U0001F600", "\"\U0001F600\""},
		{"\U000E0001", `"\udb40\udc01"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
