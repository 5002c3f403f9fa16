package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ValidationError reports a rejected answer
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// validateAge checks if age is reasonable (0-120)
func validateAge(age int, fieldName string) error {
	if age < 0 || age > 120 {
		return ValidationError{Field: fieldName, Message: fmt.Sprintf("Age must be between 0 and 120 (got %d)", age)}
	}
	return nil
}

// validatePercent checks a fraction lies in [0, 1]
func validatePercent(rate float64, fieldName string) error {
	if rate < 0 || rate > 1.0 {
		return ValidationError{Field: fieldName, Message: fmt.Sprintf("Rate must be between 0%% and 100%% (got %.1f%%)", rate*100)}
	}
	return nil
}

func validateMoney(amount float64, fieldName string) error {
	if amount < 0 {
		return ValidationError{Field: fieldName, Message: "Amount cannot be negative"}
	}
	return nil
}

// InteractiveConfigBuilder walks the user through a family office
// configuration, starting from the embedded sample
type InteractiveConfigBuilder struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewInteractiveConfigBuilder creates a builder reading answers from in
func NewInteractiveConfigBuilder(in io.Reader, out io.Writer) (*InteractiveConfigBuilder, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}
	return &InteractiveConfigBuilder{
		reader: bufio.NewReader(in),
		out:    out,
		config: config,
	}, nil
}

// parseMoney accepts "2.5m", "100k" or "100000", with an optional $ and commas
func parseMoney(input string) (float64, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	input = strings.TrimPrefix(input, "$")
	input = strings.ReplaceAll(input, ",", "")
	multiplier := 1.0
	if strings.HasSuffix(input, "k") {
		multiplier = 1000
		input = strings.TrimSuffix(input, "k")
	} else if strings.HasSuffix(input, "m") {
		multiplier = 1000000
		input = strings.TrimSuffix(input, "m")
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, err
	}
	return val * multiplier, nil
}

// parsePercentOrDecimal converts "5%" or "0.05" to 0.05
func parsePercentOrDecimal(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if numStr, ok := strings.CutSuffix(input, "%"); ok {
		num, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return num / 100.0, nil
	}
	return strconv.ParseFloat(input, 64)
}

// readLine returns the trimmed answer; EOF reads as an empty answer
func (b *InteractiveConfigBuilder) readLine() string {
	input, _ := b.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptString asks for a string with a default value
func (b *InteractiveConfigBuilder) promptString(prompt, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(b.out, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(b.out, "%s: ", prompt)
	}
	if input := b.readLine(); input != "" {
		return input
	}
	return defaultVal
}

// promptBool asks a y/n question
func (b *InteractiveConfigBuilder) promptBool(prompt string, defaultVal bool) bool {
	def := "n"
	if defaultVal {
		def = "y"
	}
	switch strings.ToLower(b.promptString(prompt+" (y/n)", def)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultVal
	}
}

// promptInt asks for an integer, re-asking until check passes.
// Running out of input returns the default.
func (b *InteractiveConfigBuilder) promptInt(prompt string, defaultVal int, check func(int) error) int {
	for {
		fmt.Fprintf(b.out, "%s [%d]: ", prompt, defaultVal)
		input, err := b.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return defaultVal
		}
		val, perr := strconv.Atoi(input)
		if perr != nil {
			fmt.Fprintf(b.out, "  ✗ Invalid number. Please enter a whole number\n")
		} else if check == nil {
			return val
		} else if cerr := check(val); cerr != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", cerr.Error())
		} else {
			return val
		}
		if err != nil {
			return defaultVal
		}
	}
}

// promptPercent asks for a rate as "5%" or "0.05"
func (b *InteractiveConfigBuilder) promptPercent(prompt string, defaultVal float64, check func(float64) error) float64 {
	return b.promptFloat(prompt, FormatPercent(defaultVal), defaultVal, parsePercentOrDecimal, check)
}

// promptMoney asks for an amount as "2.5m", "100k" or "100000"
func (b *InteractiveConfigBuilder) promptMoney(prompt string, defaultVal float64) float64 {
	return b.promptFloat(prompt, FormatMoney(defaultVal), defaultVal, parseMoney, func(v float64) error {
		return validateMoney(v, prompt)
	})
}

func (b *InteractiveConfigBuilder) promptFloat(prompt, shown string, defaultVal float64, parse func(string) (float64, error), check func(float64) error) float64 {
	for {
		fmt.Fprintf(b.out, "%s [%s]: ", prompt, shown)
		input, err := b.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return defaultVal
		}
		val, perr := parse(input)
		if perr != nil {
			fmt.Fprintf(b.out, "  ✗ Could not read %q\n", input)
		} else if check == nil {
			return val
		} else if cerr := check(val); cerr != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", cerr.Error())
		} else {
			return val
		}
		if err != nil {
			return defaultVal
		}
	}
}

// Build asks for the headline figures of the family office and returns a
// validated configuration. Everything not asked keeps the sample's value.
func (b *InteractiveConfigBuilder) Build() (*Config, error) {
	c := b.config
	printBanner(b.out, "FAMILY OFFICE CONFIGURATION")
	fmt.Fprintln(b.out, "Defaults come from the embedded sample. Press Enter to accept them.")
	fmt.Fprintln(b.out, "For percentages, enter '5%' or '0.05'. For money, enter '2.5m', '100k' or '100000'.")
	fmt.Fprintln(b.out)

	printSection(b.out, "Simulation")
	c.Simulation.Years = b.promptInt("  Horizon in years", c.Simulation.Years, func(v int) error {
		if v < 0 {
			return ValidationError{Field: "years", Message: "Horizon cannot be negative"}
		}
		return nil
	})
	c.Simulation.Runs = b.promptInt("  Monte Carlo runs", c.Simulation.GetRuns(), nil)
	fmt.Fprintln(b.out)

	printSection(b.out, "Economics")
	c.Economics.InflationRate = b.promptPercent("  Inflation", c.Economics.InflationRate, nil)
	c.Economics.FamilyGrowthRate = b.promptPercent("  Family expense growth", c.Economics.FamilyGrowthRate, nil)
	fmt.Fprintln(b.out)

	printSection(b.out, "Portfolio")
	for i := range c.Assets {
		a := &c.Assets[i]
		a.CurrentValue = b.promptMoney(fmt.Sprintf("  %s value", a.ID), a.CurrentValue)
		a.ExpectedReturn = b.promptPercent(fmt.Sprintf("  %s expected return", a.ID), a.ExpectedReturn, nil)
	}
	fmt.Fprintln(b.out)

	printSection(b.out, "Charitable Vehicles")
	for i := range c.Vehicles {
		v := &c.Vehicles[i]
		v.CurrentValue = b.promptMoney(fmt.Sprintf("  %s (%s) value", v.ID, v.Type.DisplayName()), v.CurrentValue)
		v.AnnualContribution = b.promptMoney(fmt.Sprintf("  %s annual contribution", v.ID), v.AnnualContribution)
		v.DistributionRequirement = b.promptPercent(fmt.Sprintf("  %s annual payout", v.ID), v.DistributionRequirement, func(r float64) error {
			return validatePercent(r, "distribution_requirement")
		})
	}
	fmt.Fprintln(b.out)

	printSection(b.out, "Family")
	for i := range c.Family {
		m := &c.Family[i]
		m.Age = b.promptInt(fmt.Sprintf("  %s age", m.ID), m.Age, func(v int) error { return validateAge(v, "age") })
		m.LifeExpectancy = b.promptInt(fmt.Sprintf("  %s life expectancy", m.ID), m.LifeExpectancy, func(v int) error {
			return validateAge(v, "life_expectancy")
		})
		m.AnnualExpenses = b.promptMoney(fmt.Sprintf("  %s annual expenses", m.ID), m.AnnualExpenses)
	}
	fmt.Fprintln(b.out)

	printSection(b.out, "Legacy Plan")
	c.LegacyPlan.Sunsetting = b.promptBool("  Sunset the charitable vehicles", c.LegacyPlan.Sunsetting)
	if c.LegacyPlan.Sunsetting {
		sunset := c.LegacyPlan.SunsetYear
		if sunset == 0 {
			sunset = c.Simulation.Years
		}
		c.LegacyPlan.SunsetYear = b.promptInt("    Sunset after how many years", sunset, nil)
	}
	c.Withdrawal.TargetConfidence = b.promptPercent("  Target confidence", c.Withdrawal.GetTargetConfidence(), func(r float64) error {
		return validatePercent(r, "target_confidence")
	})
	fmt.Fprintln(b.out)

	if err := ValidateConfig(c); err != nil {
		return nil, err
	}
	return c, nil
}
