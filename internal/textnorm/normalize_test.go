package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123-456-789", "123456789"},
		{"123 456789", "123456789"},
		{" 123\t456\n789 ", "123456789"},
		{"ACCOUNT NUMBER: 468869904", "ACCOUNTNUMBER:468869904"},
		{"", ""},
		{"---", ""},
		{"AbC", "AbC"},
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestNormalize_MatchingAfterFold(t *testing.T) {
	// The whole point: differently formatted numbers compare equal.
	if Normalize("123-456-789") != Normalize("123 456789") {
		t.Error("expected hyphenated and spaced forms to normalize identically")
	}
}
