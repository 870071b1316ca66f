package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"building_twin/internal/assessment"
	"building_twin/internal/simulator"
)

const barWidthMM = 120

// BuildPDF renders a one-page report with the headline figures and an
// EPI-versus-limit bar.
func BuildPDF(res simulator.Result, kpis assessment.KPIs) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Building Energy Performance Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	span := "n/a"
	if n := len(res.Records); n > 0 {
		span = fmt.Sprintf("%s to %s (%d h)",
			res.Records[0].Timestamp.Format(time.RFC3339),
			res.Records[n-1].Timestamp.Format(time.RFC3339), n)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s", span))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Seed: %d", res.Seed))
	pdf.Ln(8)

	epiBar(pdf, tr, res.Compliance)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Indicator", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range pdfRows(res, kpis) {
		pdf.CellFormat(90, 6, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Recommendations")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, r := range Recommendations(res.Compliance) {
		pdf.Cell(0, 6, "- "+r)
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// epiBar draws the EPI against the limit; the limit sits at two thirds of
// the bar so overshoot stays visible.
func epiBar(pdf *gofpdf.Fpdf, tr func(string) string, c assessment.Compliance) {
	scale := barWidthMM / (1.5 * c.RegulatoryLimit)
	x, y := pdf.GetX(), pdf.GetY()

	pdf.SetFillColor(230, 230, 230)
	pdf.Rect(x, y, barWidthMM, 8, "F")
	if c.Compliant {
		pdf.SetFillColor(76, 175, 80)
	} else {
		pdf.SetFillColor(229, 57, 53)
	}
	pdf.Rect(x, y, math.Min(c.EPI*scale, barWidthMM), 8, "F")

	limitX := x + c.RegulatoryLimit*scale
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(limitX, y-1, limitX, y+9)

	pdf.SetXY(x+barWidthMM+3, y+1)
	pdf.Cell(0, 6, tr(fmt.Sprintf("EPI %.1f / %.0f kWh/m²/year", c.EPI, c.RegulatoryLimit)))
	pdf.SetXY(x, y+14)
}

func pdfRows(res simulator.Result, kpis assessment.KPIs) [][2]string {
	c, cb := res.Compliance, res.Carbon
	return [][2]string{
		{"Annual consumption (kWh)", fmt.Sprintf("%.0f", c.AnnualConsumptionKWh)},
		{"EPI (kWh/m²/year)", fmt.Sprintf("%.1f", c.EPI)},
		{"Compliance", verdict(c.Compliant)},
		{"Required savings (kWh/year)", fmt.Sprintf("%.0f", c.RequiredSavingsKWh)},
		{"Gross emissions (kg CO2)", fmt.Sprintf("%.1f", cb.GrossEmissionsKg)},
		{"Carbon offset (kg CO2)", fmt.Sprintf("%.1f", cb.CarbonOffsetKg)},
		{"Annual net emissions (t CO2)", fmt.Sprintf("%.1f", cb.AnnualNetTonnes())},
		{"Renewable share (%)", kpis.RenewableSharePct.Format(1)},
		{"Peak demand (kW)", fmt.Sprintf("%.1f", kpis.PeakDemandKW)},
		{"Load factor", kpis.LoadFactor.Format(2)},
	}
}
