package util_test

import (
	"testing"

	"github.com/baggiolabs/baggio/internal/util"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"maria@baggio.com": "m…@b….com",
		"a@b.com":          "a@b.com",
		"":                 "",
		"no-es-email":      "n…l",
		"ab":               "***",
	}
	for in, want := range cases {
		if got := util.MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q): want %q, got %q", in, want, got)
		}
	}
}
