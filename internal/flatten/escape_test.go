package flatten

import "testing"

func TestEscapePhrase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo", `"foo"`},
		{"foo bar", `"foo bar"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\dir`, `"C:\\dir"`},
		{"", `""`},
	}
	for _, tc := range tests {
		if got := EscapePhrase(tc.in); got != tc.want {
			t.Errorf("EscapePhrase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeTerm(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo", "foo"},
		{"a:b", `a\:b`},
		{"a b", `a\ b`},
		{"(1+1)", `\(1\+1\)`},
		{`x\y`, `x\\y`},
	}
	for _, tc := range tests {
		if got := EscapeTerm(tc.in); got != tc.want {
			t.Errorf("EscapeTerm(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscaperByName(t *testing.T) {
	for _, name := range []string{"", "phrase", "term", "none"} {
		if _, ok := EscaperByName(name); !ok {
			t.Errorf("EscaperByName(%q) not found", name)
		}
	}
	if _, ok := EscaperByName("html"); ok {
		t.Error("expected html escaper to be unknown")
	}

	e, _ := EscaperByName("none")
	if got := e("a b"); got != "a b" {
		t.Errorf("none escaper = %q", got)
	}
}
