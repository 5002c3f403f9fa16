package main

// Variable Percentage Withdrawal: the distribution rate rises with the age of
// the eldest family member, between an inflation-indexed floor and a ceiling.

const (
	vpwFirstAge = 55
	vpwLastAge  = 100
)

// vpwRates holds the withdrawal percentage for ages 55..100
var vpwRates = [...]float64{
	0.030, 0.031, 0.032, 0.033, 0.034, // 55-59
	0.035, 0.036, 0.037, 0.039, 0.040, // 60-64
	0.042, 0.043, 0.045, 0.047, 0.048, // 65-69
	0.050, 0.052, 0.054, 0.056, 0.058, // 70-74
	0.061, 0.064, 0.067, 0.070, 0.073, // 75-79
	0.077, 0.081, 0.085, 0.089, 0.094, // 80-84
	0.100, 0.106, 0.113, 0.120, 0.128, // 85-89
	0.137, 0.147, 0.159, 0.172, 0.187, // 90-94
	0.204, 0.224, 0.247, 0.274, 0.307, // 95-99
	0.350, // 100+
}

// VPWRate returns the table rate for an age, clamped to the table ends
func VPWRate(age int) float64 {
	if age < vpwFirstAge {
		age = vpwFirstAge
	}
	if age > vpwLastAge {
		age = vpwLastAge
	}
	return vpwRates[age-vpwFirstAge]
}

// VPWSettings configures the VPW policy
type VPWSettings struct {
	StartAge          int     // eldest family member's age at the start
	CeilingMultiplier float64 // ceiling as a multiple of the floor
}

// VPWState tracks the inflation-indexed floor along one path
type VPWState struct {
	settings     VPWSettings
	initialFloor float64
	inflation    float64
}

// NewVPWState sets the floor to the first distribution, value × rate
func NewVPWState(settings VPWSettings, initialValue, rate, inflation float64) *VPWState {
	return &VPWState{
		settings:     settings,
		initialFloor: initialValue * rate,
		inflation:    inflation,
	}
}

// Distribution returns value × VPW rate for this year's age, held between the
// inflated floor and CeilingMultiplier × floor
func (v *VPWState) Distribution(year int, value float64) float64 {
	amount := value * VPWRate(v.settings.StartAge+year-1)

	floor := v.initialFloor * pow1p(v.inflation, year)
	if amount < floor {
		amount = floor
	}
	if v.settings.CeilingMultiplier > 0 {
		if ceiling := floor * v.settings.CeilingMultiplier; amount > ceiling {
			amount = ceiling
		}
	}
	return amount
}
