// Package format turns fractional rates and counts into the strings and colors
// shown on the dashboard, leaderboard and printouts.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ColorGold   = "#FFD700"
	ColorSilver = "#C0C0C0"
	ColorBronze = "#CD7F32"
	ColorPlain  = "#f0f0f0"

	ColorGood = "#52c41a"
	ColorWarn = "#faad14"

	// OEEWorldClass is the rate at which OEE is painted green.
	OEEWorldClass = 0.85
)

var printer = message.NewPrinter(language.English)

// Round rounds half away from zero.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Percent renders a 0..1 rate as a percentage with the given number of decimals.
func Percent(rate float64, decimals int) string {
	return strconv.FormatFloat(Round(rate*100, decimals), 'f', decimals, 64) + "%"
}

func OEEPercent(rate float64) string {
	return Percent(rate, 0)
}

// Yield is good/produced with produced floored at 1.
func Yield(good, produced int) float64 {
	return float64(good) / float64(max(produced, 1))
}

func YieldPercent(good, produced int) string {
	return Percent(Yield(good, produced), 1)
}

// Count groups thousands: 1234567 -> "1,234,567".
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// RankColor is the podium color of a 0-based rank.
func RankColor(rank int) string {
	switch rank {
	case 0:
		return ColorGold
	case 1:
		return ColorSilver
	case 2:
		return ColorBronze
	default:
		return ColorPlain
	}
}

func OEEColor(rate float64) string {
	if rate >= OEEWorldClass {
		return ColorGood
	}
	return ColorWarn
}
