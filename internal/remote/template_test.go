package remote

import "testing"

func TestEvalTemplate(t *testing.T) {
	info := map[string]any{
		"title": "Road Trip",
		"id":    "abc123",
		"n":     7,
		"blank": "   ",
	}
	cases := []struct {
		tmpl string
		want string
	}{
		{"%(title)s [%(id)s]", "Road Trip [abc123]"},
		{"%(title)s", "Road Trip"},
		{"%(n)s", "7"},
		{"%(missing)s", "NA"},
		{"%(blank)s", "NA"},
		{"no tokens", "no tokens"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := EvalTemplate(tc.tmpl, info); got != tc.want {
			t.Errorf("EvalTemplate(%q) = %q, want %q", tc.tmpl, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AC/DC - Back In Black", "AC_DC - Back In Black"},
		{"Live: Tokyo", "Live - Tokyo"},
		{"back\\slash", "back_slash"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
