package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const ruleWidth = 78

// FormatMoney formats a float as an abbreviated currency string
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount >= 1000000 {
		return fmt.Sprintf("%s$%.2fM", sign, amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("%s$%.0fk", sign, amount/1000)
	}
	return fmt.Sprintf("%s$%.0f", sign, amount)
}

// FormatMoneyFull formats a float to the cent with thousands separators
func FormatMoneyFull(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	digits, cents := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + cents
}

// FormatPercent formats a fraction as a percentage with one decimal
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w, "╔"+strings.Repeat("═", ruleWidth)+"╗")
	fmt.Fprintf(w, "║ %-*s ║\n", ruleWidth-2, title)
	fmt.Fprintln(w, "╚"+strings.Repeat("═", ruleWidth)+"╝")
	fmt.Fprintln(w)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(title))))
}

// PrintHeader prints the family office being simulated
func PrintHeader(w io.Writer, config *Config) {
	printBanner(w, "FAMILY OFFICE LEGACY FORECAST")

	printSection(w, "Configuration:")
	fmt.Fprintf(w, "  Portfolio: %s across %d assets\n", FormatMoney(config.TotalAssetValue()), len(config.Assets))
	fmt.Fprintf(w, "  Charitable: %s across %d vehicles\n", FormatMoney(config.TotalCharitableValue()), len(config.Vehicles))
	for _, v := range config.Vehicles {
		fmt.Fprintf(w, "          %-24s %-20s %10s  +%s/year  %s payout\n",
			v.ID, v.Type.DisplayName(), FormatMoney(v.CurrentValue),
			FormatMoney(v.AnnualContribution), FormatPercent(v.DistributionRequirement))
	}
	fmt.Fprintf(w, "  Family: %d members, income %s/year, expenses %s/year\n",
		len(config.Family), FormatMoney(config.TotalFamilyIncome()), FormatMoney(config.TotalFamilyExpenses()))
	fmt.Fprintf(w, "  Inflation: %.1f%% | Family Growth: %.1f%% | Impact Premium: %.1f%%\n",
		config.Economics.InflationRate*100,
		config.Economics.FamilyGrowthRate*100,
		config.Economics.ImpactPremium*100)
	fmt.Fprintf(w, "  Simulation: %d years, %d runs, %s correlation\n",
		config.Simulation.Years, config.Simulation.GetRuns(), config.Simulation.GetCorrelationMode())
	if config.LegacyPlan.Sunsetting {
		fmt.Fprintf(w, "  Sunset: year %d\n", config.LegacyPlan.SunsetYear)
	}
	fmt.Fprintln(w)
}

// PrintLegacyResult prints the summary of a legacy planning batch
func PrintLegacyResult(w io.Writer, result *SimulationResult) {
	printBanner(w, fmt.Sprintf("Legacy Simulation: %d runs over %d years (seed %d)", result.Runs, result.Years, result.Seed))

	printSection(w, "Family:")
	fmt.Fprintf(w, "  %-34s %s\n", "Mean final family wealth:", FormatMoney(result.FamilyWealth))
	fmt.Fprintf(w, "  %-34s %s / %s / %s\n", "P10 / P50 / P90:",
		FormatMoney(result.FamilyWealthPercentiles.P10),
		FormatMoney(result.FamilyWealthPercentiles.P50),
		FormatMoney(result.FamilyWealthPercentiles.P90))
	fmt.Fprintf(w, "  %-34s %s\n", "Sustainability:", FormatPercent(result.SustainabilityScore))
	fmt.Fprintf(w, "  %-34s %s\n", "Failure rate:", FormatPercent(result.FailureRate))
	fmt.Fprintf(w, "  %-34s %s\n", "Successor readiness:", FormatPercent(result.SuccessorReadiness))
	fmt.Fprintf(w, "  %-34s %s\n", "Family engagement:", FormatPercent(result.FamilyEngagementScore))
	fmt.Fprintln(w)

	printSection(w, "Philanthropy:")
	fmt.Fprintf(w, "  %-34s %s\n", "Capital deployed (mean):", FormatMoney(result.PhilanthropicCapitalDeployed))
	fmt.Fprintf(w, "  %-34s %.2f\n", "Impact score:", result.PhilanthropicImpact)
	fmt.Fprintf(w, "  %-34s %s\n", "Perpetuity probability:", FormatPercent(result.PerpetuityProbability))
	if result.SunsetProbability > 0 {
		fmt.Fprintf(w, "  %-34s %s\n", "Sunset probability:", FormatPercent(result.SunsetProbability))
	}
	if result.OptimalWithdrawalRate > 0 {
		fmt.Fprintf(w, "  %-34s %s\n", "Sustainable withdrawal rate:", FormatPercent(result.OptimalWithdrawalRate))
	}
	fmt.Fprintf(w, "  %-34s %.3f\n", "Balance score:", result.BalanceScore)
	fmt.Fprintln(w)

	if len(result.OptimalVehicleMix) > 0 {
		printSection(w, "Optimal Vehicle Mix:")
		for _, vt := range VehicleTypes {
			if share, ok := result.OptimalVehicleMix[vt]; ok {
				fmt.Fprintf(w, "  %-28s %6s  %s\n", vt.DisplayName(), FormatPercent(share), bar(share, 40))
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.SkippedVehicles) > 0 {
		fmt.Fprintf(w, "  Vehicles without a known strategy (carried at cost): %s\n", strings.Join(result.SkippedVehicles, ", "))
	}
	if result.FaultedTrials > 0 {
		fmt.Fprintf(w, "  %d trial(s) produced non-finite values and were counted as failures\n", result.FaultedTrials)
	}
}

// PrintMeanPath prints the mean yearly path, every 5th year plus the ends
func PrintMeanPath(w io.Writer, path []YearSummary) {
	if len(path) == 0 {
		return
	}
	printSection(w, "Mean Path:")
	fmt.Fprintf(w, "%-6s │ %14s │ %14s │ %14s │ %14s\n", "Year", "Portfolio", "Charitable", "Distributions", "Family")
	fmt.Fprintln(w, strings.Repeat("─", 74))
	for i, y := range path {
		if i == 0 || i == len(path)-1 || y.Year%5 == 0 {
			fmt.Fprintf(w, "%-6d │ %14s │ %14s │ %14s │ %14s\n", y.Year,
				FormatMoney(y.Portfolio), FormatMoney(y.Charitable), FormatMoney(y.Distributions), FormatMoney(y.Family))
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", 74))
	fmt.Fprintln(w)
}

// PrintTaxResult prints the summary of a tax structuring batch
func PrintTaxResult(w io.Writer, result *TaxSimulationResult) {
	printBanner(w, fmt.Sprintf("Tax Structuring: %d runs over %d years, %d structures", result.Runs, result.Years, result.CatalogSize))

	fmt.Fprintf(w, "  %-34s %s\n", "After-tax value (mean):", FormatMoneyFull(result.TotalAfterTaxValue))
	fmt.Fprintf(w, "  %-34s %s / %s / %s\n", "P10 / P50 / P90:",
		FormatMoney(result.AfterTaxPercentiles.P10),
		FormatMoney(result.AfterTaxPercentiles.P50),
		FormatMoney(result.AfterTaxPercentiles.P90))
	fmt.Fprintf(w, "  %-34s %s\n", "Taxes paid (mean):", FormatMoneyFull(result.TotalTaxesPaid))
	fmt.Fprintf(w, "  %-34s %s\n", "Losses harvested (mean):", FormatMoneyFull(result.TotalHarvestedLosses))
	fmt.Fprintf(w, "  %-34s %s\n", "Estate tax exposure (mean):", FormatMoneyFull(result.EstateTaxExposure))
	fmt.Fprintf(w, "  %-34s %s\n", "Median annual tax rate:", FormatPercent(result.MedianAnnualTaxRate))
	fmt.Fprintf(w, "  %-34s %s\n", "Withdrawal success rate:", FormatPercent(result.SuccessRate))
	fmt.Fprintln(w)

	printSection(w, "Optimal Entity Mix:")
	for _, e := range EntityTypes {
		if share := result.OptimalEntityMix[e]; share > 0 {
			fmt.Fprintf(w, "  %-28s %6s  %s\n", e.DisplayName(), FormatPercent(share), bar(share, 40))
		}
	}
	fmt.Fprintln(w)

	printSection(w, "Optimal Jurisdiction Mix:")
	for _, j := range Jurisdictions {
		if share := result.OptimalJurisdictionMix[j]; share > 0 {
			fmt.Fprintf(w, "  %-28s %6s  %s\n", string(j), FormatPercent(share), bar(share, 40))
		}
	}
	fmt.Fprintln(w)

	if result.FaultedTrials > 0 {
		fmt.Fprintf(w, "  %d trial(s) produced non-finite values and were counted as failures\n", result.FaultedTrials)
	}
}

// PrintSensitivityGrid prints sustainability for every return-shift cell
func PrintSensitivityGrid(w io.Writer, analysis *SensitivityAnalysis) {
	printBanner(w, fmt.Sprintf("Sensitivity: sustainability by return shift (%d runs per cell)", analysis.RunsPerCell))

	fmt.Fprintf(w, "%-12s", "Portfolio ╲")
	for _, vs := range analysis.VehicleShifts {
		fmt.Fprintf(w, " %8s", fmt.Sprintf("%+.1f%%", vs*100))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 12+9*len(analysis.VehicleShifts)))

	bestP, bestV := analysis.BestCell()
	for pi, row := range analysis.Results {
		fmt.Fprintf(w, "%-12s", fmt.Sprintf("%+.1f%%", analysis.PortfolioShifts[pi]*100))
		for vi, cell := range row {
			mark := " "
			if pi == bestP && vi == bestV {
				mark = "*"
			}
			fmt.Fprintf(w, " %7s%s", FormatPercent(cell.Sustainability), mark)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Columns shift charitable strategy returns; rows shift portfolio asset returns.")
	fmt.Fprintln(w)
}

// PrintSpendingCapacity prints the spending capacity search result
func PrintSpendingCapacity(w io.Writer, res *SpendingCapacityResult) {
	printBanner(w, fmt.Sprintf("Spending Capacity at %s confidence", FormatPercent(res.TargetConfidence)))

	fmt.Fprintf(w, "  %-34s %s/year (%s sustainable)\n", "Current expenses:",
		FormatMoneyFull(res.BaselineExpenses), FormatPercent(res.BaselineSustainability))
	fmt.Fprintf(w, "  %-34s %s/year (%s sustainable)\n", "Sustainable expenses:",
		FormatMoneyFull(res.SustainableExpenses), FormatPercent(res.Sustainability))
	fmt.Fprintf(w, "  %-34s %.3fx after %d iterations\n", "Multiplier:", res.Multiplier, res.Iterations)
	fmt.Fprintln(w)
}

func bar(share float64, width int) string {
	n := int(clamp01(share)*float64(width) + 0.5)
	return strings.Repeat("█", n)
}
