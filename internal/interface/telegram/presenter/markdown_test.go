package presenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"a_b", `a\_b`},
		{"*bold*", `\*bold\*`},
		{"16:00 - встреча", `16:00 \- встреча`},
		{"1. пункт (важный)", `1\. пункт \(важный\)`},
		{"a>b#c", `a\>b\#c`},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.input))
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░]", Bar(0, 100))
	assert.Equal(t, "[█████░░░░░]", Bar(50, 100))
	assert.Equal(t, "[██████████]", Bar(100, 100))

	// Clamped at both ends.
	assert.Equal(t, "[░░░░░░░░░░]", Bar(-5, 100))
	assert.Equal(t, "[██████████]", Bar(150, 100))

	// Zero max must not divide by zero.
	assert.Equal(t, 12, len([]rune(Bar(0, 0))))
}

func TestBarWidthIsStable(t *testing.T) {
	for v := 0; v <= 100; v += 7 {
		bar := Bar(v, 100)
		assert.Equal(t, barWidth+2, len([]rune(bar)), "value %d", v)
		assert.True(t, strings.HasPrefix(bar, "["))
		assert.True(t, strings.HasSuffix(bar, "]"))
	}
}
