package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		decimals int
		want     string
	}{
		{name: "zero", rate: 0, decimals: 0, want: "0%"},
		{name: "whole", rate: 0.9, decimals: 0, want: "90%"},
		{name: "half rounds up", rate: 0.125, decimals: 0, want: "13%"},
		{name: "one decimal", rate: 0.95, decimals: 1, want: "95.0%"},
		{name: "over one", rate: 1.234, decimals: 1, want: "123.4%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.rate, tt.decimals))
		})
	}
}

func TestOEEPercent(t *testing.T) {
	assert.Equal(t, "85%", OEEPercent(0.8512))
	assert.Equal(t, "100%", OEEPercent(1))
}

func TestYieldPercent(t *testing.T) {
	assert.Equal(t, "95.0%", YieldPercent(950, 1000))
	assert.Equal(t, "66.7%", YieldPercent(2, 3))
	assert.Equal(t, "0.0%", YieldPercent(0, 0))
	assert.Equal(t, "500.0%", YieldPercent(5, 0))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1,234", Count(1234))
	assert.Equal(t, "1,234,567", Count(1234567))
}

func TestRankColor(t *testing.T) {
	assert.Equal(t, ColorGold, RankColor(0))
	assert.Equal(t, ColorSilver, RankColor(1))
	assert.Equal(t, ColorBronze, RankColor(2))
	assert.Equal(t, ColorPlain, RankColor(3))
	assert.Equal(t, ColorPlain, RankColor(40))
}

func TestOEEColor(t *testing.T) {
	assert.Equal(t, ColorGood, OEEColor(0.85))
	assert.Equal(t, ColorGood, OEEColor(0.97))
	assert.Equal(t, ColorWarn, OEEColor(0.8499))
}
