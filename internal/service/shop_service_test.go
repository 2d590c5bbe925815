package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Electronics", "acme-electronics"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Già's Kirana & Sons", "gi-s-kirana-sons"},
		{"UPPER-case", "upper-case"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.in), "slugify(%q)", tc.in)
	}
}
