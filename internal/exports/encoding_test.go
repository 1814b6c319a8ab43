package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLine(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		want     string
		replaced int
	}{
		{"ascii", "Week 1: save $200", "Week 1: save $200", 0},
		{"cp1252 punctuation", "“go” — €5", "\x93go\x94 \x97 \x805", 0},
		{"arrow fallback", "a → b", "a -> b", 1},
		{"emoji", "x\U0001F4B0y", "x?y", 1},
		{"tab", "\tindent", "    indent", 0},
		{"zero width", "a\u200bb", "ab", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := encodeLine(tc.in)
			assert.Equal(t, tc.want, res.text)
			assert.Equal(t, tc.replaced, res.replaced)
		})
	}
}
