package main

// GuardrailsSettings are the Guyton-Klinger bands, as ratios of the current
// distribution rate to the initial one
type GuardrailsSettings struct {
	UpperLimit float64 // e.g. 1.20: cut when the rate drifts 20% above its start
	LowerLimit float64 // e.g. 0.80: raise when it drifts 20% below
	Adjustment float64 // e.g. 0.10: size of each cut or raise
}

// GuardrailsState tracks one vehicle's guardrails distribution along a path
type GuardrailsState struct {
	settings    GuardrailsSettings
	initialRate float64
	current     float64
	inflation   float64
}

// NewGuardrailsState starts the schedule at value × rate
func NewGuardrailsState(settings GuardrailsSettings, initialValue, rate, inflation float64) *GuardrailsState {
	g := &GuardrailsState{
		settings:  settings,
		current:   initialValue * rate,
		inflation: inflation,
	}
	if initialValue > 0 {
		g.initialRate = g.current / initialValue
	}
	return g
}

// Distribution grows last year's distribution by inflation, then cuts or
// raises it when the implied rate has left the guardrail band
func (g *GuardrailsState) Distribution(_ int, value float64) float64 {
	g.current *= 1 + g.inflation
	g.current *= 1 + float64(g.Triggered(value))*g.settings.Adjustment
	return g.current
}

// Triggered reports the direction the guardrails would move at this value:
// -1 cut, 0 hold, 1 raise
func (g *GuardrailsState) Triggered(value float64) int {
	if g.initialRate <= 0 || value <= 0 {
		return 0
	}
	ratio := (g.current / value) / g.initialRate
	switch {
	case ratio > g.settings.UpperLimit:
		return -1
	case ratio < g.settings.LowerLimit:
		return 1
	}
	return 0
}
