package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glikoz/pkg/contracts/domain"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Glikoz Report", "Glikoz Report"},
		{"percent", "50% done", `50\% done`},
		{"ampersand and underscore", "fast & basal_insulin", `fast \& basal\_insulin`},
		{"dollar and hash", "$5 #1", `\$5 \#1`},
		{"braces", "{group}", `\{group\}`},
		{"backslash", `a\b`, `a\textbackslash{}b`},
		{"caret and tilde", "x^2 ~y", `x\^{}2 \textasciitilde{}y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLaTeX(tt.input))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "130.00", formatFloat(130, 2))
	assert.Equal(t, "6.505", formatFloat(6.50499, 3))
	assert.Equal(t, "7", formatFloat(7.4, 0))
}

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "", formatOptional(nil, 2))
	assert.Equal(t, "0.00", formatOptional(domain.Float(0), 2))
	assert.Equal(t, "42.50", formatOptional(domain.Float(42.5), 2))
}

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "0.5", formatCoordinate(0.5))
	assert.Equal(t, "110", formatCoordinate(110))
}
