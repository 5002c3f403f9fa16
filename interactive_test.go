package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"100000", 100_000},
		{"100k", 100_000},
		{"2.5m", 2_500_000},
		{"$1,250,000", 1_250_000},
		{" 12K ", 12_000},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseMoney(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := parseMoney("lots")
	assert.Error(t, err)
}

func TestParsePercentOrDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5%", 0.05},
		{"0.05", 0.05},
		{"-1%", -0.01},
		{"2.5 %", 0.025},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parsePercentOrDecimal(tc.input)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-12)
		})
	}

	_, err := parsePercentOrDecimal("five%")
	assert.Error(t, err)
}

func TestInteractiveConfigBuilder_AcceptDefaults(t *testing.T) {
	var out bytes.Buffer
	b, err := NewInteractiveConfigBuilder(strings.NewReader(""), &out)
	require.NoError(t, err)

	cfg, err := b.Build()
	require.NoError(t, err)

	sample, err := LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, sample.Simulation.Years, cfg.Simulation.Years)
	assert.Equal(t, sample.Assets, cfg.Assets)
	assert.Equal(t, sample.Family, cfg.Family)
	assert.Contains(t, out.String(), "FAMILY OFFICE CONFIGURATION")
}

func TestInteractiveConfigBuilder_Answers(t *testing.T) {
	// Horizon: two rejected answers, then 25. Runs, inflation, family growth follow.
	answers := "abc\n-5\n25\n1000\n3%\n0.015\n"
	var out bytes.Buffer
	b, err := NewInteractiveConfigBuilder(strings.NewReader(answers), &out)
	require.NoError(t, err)

	cfg, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Simulation.Years)
	assert.Equal(t, 1000, cfg.Simulation.Runs)
	assert.InDelta(t, 0.03, cfg.Economics.InflationRate, 1e-12)
	assert.InDelta(t, 0.015, cfg.Economics.FamilyGrowthRate, 1e-12)
	assert.Contains(t, out.String(), "Invalid number")
	assert.Contains(t, out.String(), "Horizon cannot be negative")
}

func TestInteractiveConfigBuilder_PromptBool(t *testing.T) {
	tests := []struct {
		input    string
		def      bool
		expected bool
	}{
		{"y\n", false, true},
		{"no\n", true, false},
		{"\n", true, true},
		{"maybe\n", false, false},
	}
	for _, tc := range tests {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			b, err := NewInteractiveConfigBuilder(strings.NewReader(tc.input), &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b.promptBool("Sunset", tc.def))
		})
	}
}

func TestInteractiveConfigBuilder_RejectsOutOfRange(t *testing.T) {
	var out bytes.Buffer
	b, err := NewInteractiveConfigBuilder(strings.NewReader("150%\n40%\n"), &out)
	require.NoError(t, err)

	got := b.promptPercent("Payout", 0.05, func(r float64) error { return validatePercent(r, "payout") })
	assert.InDelta(t, 0.40, got, 1e-12)
	assert.Contains(t, out.String(), "Rate must be between 0% and 100%")

	b, err = NewInteractiveConfigBuilder(strings.NewReader("-10k\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 7.0, b.promptMoney("Value", 7), "a rejected last answer falls back to the default")
}
