package techspec_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mocksi/webforge/techspec"
)

func TestScoreComplexity_ElementTiers(t *testing.T) {
	tests := []struct {
		elements int
		want     int
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{199, 1},
		{200, 2},
		{499, 2},
		{500, 3},
		{5000, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d elements", tt.elements), func(t *testing.T) {
			c := techspec.ScoreComplexity(tt.elements, 0, 0)
			assert.Equal(t, tt.want, c.ElementScore)
			assert.Equal(t, tt.want, c.Score)
		})
	}
}

func TestScoreComplexity_ScriptTiers(t *testing.T) {
	tests := []struct {
		scripts int
		want    int
	}{
		{0, 0},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d scripts", tt.scripts), func(t *testing.T) {
			c := techspec.ScoreComplexity(0, tt.scripts, 0)
			assert.Equal(t, tt.want, c.ScriptScore)
		})
	}
}

func TestScoreComplexity_Levels(t *testing.T) {
	tests := []struct {
		name     string
		elements int
		scripts  int
		forms    int
		want     string
	}{
		{"empty page", 0, 0, 0, techspec.ComplexityLow},
		{"small static page", 199, 1, 1, techspec.ComplexityLow},
		{"mid-size page", 200, 6, 0, techspec.ComplexityMedium},
		{"upper medium", 499, 10, 2, techspec.ComplexityMedium},
		{"large scripted page", 500, 11, 1, techspec.ComplexityHigh},
		{"form-heavy page", 49, 0, 7, techspec.ComplexityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := techspec.ScoreComplexity(tt.elements, tt.scripts, tt.forms)
			assert.Equal(t, tt.want, c.Level)
		})
	}
}
