package main

import "math"

// WithdrawalPolicy sets a vehicle's distribution for a year. year is 1-based
// and value is the vehicle value after returns, contributions and admin costs.
type WithdrawalPolicy interface {
	Distribution(year int, value float64) float64
}

// WithdrawalParams configures the sustainable withdrawal rate search
type WithdrawalParams struct {
	Strategy         WithdrawalStrategy
	Years            int
	Runs             int // paths per candidate rate
	TargetConfidence float64
	InflationRate    float64
	Grid             []float64
	Guardrails       GuardrailsSettings
	VPW              VPWSettings
}

type fixedPercentagePolicy struct {
	rate float64
}

func (p *fixedPercentagePolicy) Distribution(_ int, value float64) float64 {
	return value * p.rate
}

// inflationAdjustedPolicy grows the first distribution by inflation every year
type inflationAdjustedPolicy struct {
	current   float64
	inflation float64
}

func (p *inflationAdjustedPolicy) Distribution(_ int, _ float64) float64 {
	p.current *= 1 + p.inflation
	return p.current
}

// endowmentPolicy blends 70% of last year's distribution grown by inflation
// with 30% of rate × current value
type endowmentPolicy struct {
	previous  float64
	rate      float64
	inflation float64
}

func (p *endowmentPolicy) Distribution(_ int, value float64) float64 {
	p.previous = 0.7*p.previous*(1+p.inflation) + 0.3*p.rate*value
	return p.previous
}

// NewWithdrawalPolicy builds a fresh policy for one path starting at initialValue
func NewWithdrawalPolicy(params WithdrawalParams, initialValue, rate float64) WithdrawalPolicy {
	start := initialValue * rate
	switch params.Strategy {
	case FixedPercentage:
		return &fixedPercentagePolicy{rate: rate}
	case EndowmentModel:
		return &endowmentPolicy{previous: start, rate: rate, inflation: params.InflationRate}
	case VariablePercentage:
		return NewVPWState(params.VPW, initialValue, rate, params.InflationRate)
	case GuardrailsStrategy:
		return NewGuardrailsState(params.Guardrails, initialValue, rate, params.InflationRate)
	default:
		return &inflationAdjustedPolicy{current: start, inflation: params.InflationRate}
	}
}

// buildRateSteps returns min, min+step, ... up to max inclusive. Values are
// computed from the index so long grids do not accumulate rounding drift.
func buildRateSteps(min, max, step float64) []float64 {
	if step <= 0 || min > max {
		return nil
	}
	var rates []float64
	for k := 0; ; k++ {
		r := min + float64(k)*step
		if r > max+0.0001*step { // small epsilon for float comparison
			break
		}
		rates = append(rates, math.Round(r*1e8)/1e8)
	}
	return rates
}

// WithdrawalRateGrid returns the candidate distribution rates, ascending.
// A non-positive step or min > max yields an empty grid.
func WithdrawalRateGrid(min, max, step float64) []float64 {
	return buildRateSteps(min, max, step)
}

// SustainableWithdrawalRate walks the rate grid upward and returns the
// highest rate whose success probability reaches the target, together with
// that probability. The walk stops at the first rate that misses. An empty
// grid or a non-positive run count returns (0, 0).
func SustainableWithdrawalRate(vehicle CharitableVehicle, strategy *resolvedStrategy, params WithdrawalParams, s *NormalSampler) (rate, successProbability float64) {
	if len(params.Grid) == 0 || params.Runs <= 0 {
		return 0, 0
	}

	for _, candidate := range params.Grid {
		successes := 0
		for run := 0; run < params.Runs; run++ {
			if simulateWithdrawalPath(vehicle, strategy, params, candidate, s) {
				successes++
			}
		}
		p := float64(successes) / float64(params.Runs)
		if p < params.TargetConfidence {
			break
		}
		rate, successProbability = candidate, p
	}
	return rate, successProbability
}

// simulateWithdrawalPath reports whether the vehicle stays above zero for
// every year at the candidate rate
func simulateWithdrawalPath(vehicle CharitableVehicle, strategy *resolvedStrategy, params WithdrawalParams, rate float64, s *NormalSampler) bool {
	value := vehicle.CurrentValue
	policy := NewWithdrawalPolicy(params, value, rate)

	for year := 1; year <= params.Years; year++ {
		r := 0.0
		if strategy != nil {
			r = strategy.Draw(s)
		}
		value *= 1 + r
		value += vehicle.AnnualContribution
		value -= value * vehicle.AdminCostRate
		value -= policy.Distribution(year, value)
		if value <= 0 {
			return false
		}
	}
	return true
}

// pow1p returns (1+r)^n
func pow1p(r float64, n int) float64 {
	return math.Pow(1+r, float64(n))
}
