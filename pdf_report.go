package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFLegacyReport renders a legacy batch, and optionally a tax batch, to PDF
type PDFLegacyReport struct {
	pdf    *fpdf.Fpdf
	config *Config
	result *SimulationResult
	tax    *TaxSimulationResult
	now    time.Time
}

// GenerateLegacyPDFReport creates the family office report. tax may be nil.
func GenerateLegacyPDFReport(config *Config, result *SimulationResult, tax *TaxSimulationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no simulation result to report")
	}
	report := &PDFLegacyReport{
		pdf:    fpdf.New("P", "mm", "A4", ""),
		config: config,
		result: result,
		tax:    tax,
		now:    time.Now(),
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle("Family Office Legacy Forecast", false)

	report.addTitlePage()
	report.addSummaryPage()
	report.addMeanPathPage()
	if tax != nil {
		report.addTaxPage()
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PDFLegacyReport) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(50)
	r.pdf.CellFormat(contentWidth, 15, "Family Office Legacy Forecast", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", r.now.Format("2 January 2006")), "", 1, "C", false, 0, "")
	if r.result.RunID != "" {
		r.pdf.CellFormat(contentWidth, 6, "Run "+r.result.RunID, "", 1, "C", false, 0, "")
	}

	r.pdf.Ln(20)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)

	r.drawBox("Family", func() []string {
		lines := make([]string, 0, len(r.config.Family))
		for _, m := range r.config.Family {
			role := ""
			if m.Successor {
				role = ", successor"
			}
			lines = append(lines, fmt.Sprintf("%s - age %d, expenses %s/year%s", m.ID, m.Age, FormatMoney(m.AnnualExpenses), role))
		}
		return lines
	}())

	r.pdf.Ln(10)
	r.drawBox("Holdings", []string{
		fmt.Sprintf("Portfolio: %s across %d assets", FormatMoney(r.config.TotalAssetValue()), len(r.config.Assets)),
		fmt.Sprintf("Charitable: %s across %d vehicles", FormatMoney(r.config.TotalCharitableValue()), len(r.config.Vehicles)),
		fmt.Sprintf("Horizon: %d years, %d simulated paths, seed %d", r.result.Years, r.result.Runs, r.result.Seed),
	})

	if ms := r.config.LegacyPlan.MissionStatement; ms != "" {
		r.pdf.Ln(10)
		r.pdf.SetFont("Arial", "I", 11)
		r.pdf.SetTextColor(50, 50, 50)
		r.pdf.MultiCell(contentWidth, 5.5, ms, "", "C", false)
	}

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"This document is for informational purposes only and does not constitute financial, legal or tax advice. "+
			"Simulated outcomes are not guarantees of future results.", "", "C", false)
}

func (r *PDFLegacyReport) addSummaryPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Outcome Summary")

	widths := []float64{110, 70}
	r.drawTableHeader([]string{"Measure", "Value"}, widths)
	res := r.result
	rows := [][]string{
		{"Mean final family wealth", FormatMoney(res.FamilyWealth)},
		{"Family wealth P10", FormatMoney(res.FamilyWealthPercentiles.P10)},
		{"Family wealth P50", FormatMoney(res.FamilyWealthPercentiles.P50)},
		{"Family wealth P90", FormatMoney(res.FamilyWealthPercentiles.P90)},
		{"Sustainability", FormatPercent(res.SustainabilityScore)},
		{"Failure rate", FormatPercent(res.FailureRate)},
		{"Philanthropic capital deployed", FormatMoney(res.PhilanthropicCapitalDeployed)},
		{"Impact score", fmt.Sprintf("%.2f", res.PhilanthropicImpact)},
		{"Perpetuity probability", FormatPercent(res.PerpetuityProbability)},
		{"Successor readiness", FormatPercent(res.SuccessorReadiness)},
		{"Family engagement", FormatPercent(res.FamilyEngagementScore)},
		{"Sustainable withdrawal rate", FormatPercent(res.OptimalWithdrawalRate)},
		{"Balance score", fmt.Sprintf("%.3f", res.BalanceScore)},
	}
	if r.config.LegacyPlan.Sunsetting {
		rows = append(rows, []string{"Sunset probability", FormatPercent(res.SunsetProbability)})
	}
	for _, row := range rows {
		r.drawTableRow(row, widths, false)
	}

	if len(res.OptimalVehicleMix) > 0 {
		r.pdf.Ln(10)
		r.drawSectionHeader("Optimal Vehicle Mix")
		r.drawTableHeader([]string{"Vehicle", "Share"}, widths)
		for _, vt := range VehicleTypes {
			if share, ok := res.OptimalVehicleMix[vt]; ok {
				r.drawTableRow([]string{vt.DisplayName(), FormatPercent(share)}, widths, false)
			}
		}
	}

	if res.FaultedTrials > 0 {
		r.pdf.Ln(6)
		r.pdf.SetFont("Arial", "I", 9)
		r.pdf.SetTextColor(180, 0, 0)
		r.pdf.MultiCell(contentWidth, 4.5,
			fmt.Sprintf("%d simulated path(s) produced non-finite values and were counted as failures.", res.FaultedTrials), "", "L", false)
	}
}

func (r *PDFLegacyReport) addMeanPathPage() {
	if len(r.result.MeanPath) == 0 {
		return
	}
	r.pdf.AddPage()
	r.drawSectionHeader("Mean Path")

	widths := []float64{20, 40, 40, 40, 40}
	r.drawTableHeader([]string{"Year", "Portfolio", "Charitable", "Distributions", "Family"}, widths)
	for i, y := range r.result.MeanPath {
		last := i == len(r.result.MeanPath)-1
		r.drawTableRow([]string{
			fmt.Sprintf("%d", y.Year),
			FormatMoney(y.Portfolio),
			FormatMoney(y.Charitable),
			FormatMoney(y.Distributions),
			FormatMoney(y.Family),
		}, widths, last)
	}
}

func (r *PDFLegacyReport) addTaxPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Tax Structuring")

	t := r.tax
	widths := []float64{110, 70}
	r.drawTableHeader([]string{"Measure", "Value"}, widths)
	for _, row := range [][]string{
		{"Structures searched", fmt.Sprintf("%d", t.CatalogSize)},
		{"After-tax value (mean)", FormatMoneyFull(t.TotalAfterTaxValue)},
		{"Taxes paid (mean)", FormatMoneyFull(t.TotalTaxesPaid)},
		{"Losses harvested (mean)", FormatMoneyFull(t.TotalHarvestedLosses)},
		{"Estate tax exposure (mean)", FormatMoneyFull(t.EstateTaxExposure)},
		{"Median annual tax rate", FormatPercent(t.MedianAnnualTaxRate)},
		{"Withdrawal success rate", FormatPercent(t.SuccessRate)},
	} {
		r.drawTableRow(row, widths, false)
	}

	r.pdf.Ln(10)
	r.drawSectionHeader("Preferred Structures")
	r.drawTableHeader([]string{"Entity / Jurisdiction", "Share of paths"}, widths)
	for _, e := range EntityTypes {
		if share := t.OptimalEntityMix[e]; share > 0 {
			r.drawTableRow([]string{e.DisplayName(), FormatPercent(share)}, widths, false)
		}
	}
	for _, j := range Jurisdictions {
		if share := t.OptimalJurisdictionMix[j]; share > 0 {
			r.drawTableRow([]string{string(j), FormatPercent(share)}, widths, true)
		}
	}
}

func (r *PDFLegacyReport) drawBox(title string, lines []string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for _, line := range lines {
		r.pdf.CellFormat(contentWidth, 7, line, "LR", 1, "C", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")
}

func (r *PDFLegacyReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFLegacyReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFLegacyReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, truncateString(cell, 60), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
