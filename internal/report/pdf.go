package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"maturity-assessment-backend/internal/scoring"
)

// PDF writes an A4 summary: executive summary, category table with score
// bars, and prioritized recommendations.
func PDF(in Input, w io.Writer) error {
	v := variantFor(in.Program)
	areas := in.areas()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(v.Title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 9, tr(v.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Organization: %s", in.Organization.Name)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Type: %s", OrgTypeLabel(in.Organization.Type))))
	pdf.Ln(6)
	if in.Organization.Sector != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Sector: %s", in.Organization.Sector)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Executive summary")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Overall maturity level: %s, average score %s/5.",
		in.Result.MaturityLabel, formatNumber(in.Result.OverallMaturity))), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Analysis by area")
	pdf.Ln(9)

	widths := []float64{70, 20, 45, 20, 25}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Area", "Score", "", "Gap", "Priority"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, a := range areas {
		x, y := pdf.GetXY()
		pdf.CellFormat(widths[0], 7, tr(a.Category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, formatNumber(a.Gap.CurrentScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, "", "1", 0, "", false, 0, "")
		scoreBar(pdf, x+widths[0]+widths[1]+2, y+2, widths[2]-4, 3, a.Gap)
		pdf.CellFormat(widths[3], 7, formatNumber(a.Gap.Gap), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 7, a.Gap.Priority, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	if len(areas) == 0 {
		pdf.CellFormat(0, 7, "No area received a scored answer.", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Priority recommendations")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	high := byPriority(areas, scoring.PriorityHigh)
	medium := byPriority(areas, scoring.PriorityMedium)
	for _, a := range high {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("- %s (High): an immediate action plan is needed to close a gap of %s points.",
			a.Category, formatNumber(a.Gap.Gap))), "", "L", false)
	}
	for _, a := range medium {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("- %s (Medium): plan improvement actions over the next year.", a.Category)), "", "L", false)
	}
	if len(high)+len(medium) == 0 {
		pdf.MultiCell(0, 6, "No area requires priority intervention.", "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr(v.Footer), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

func scoreBar(pdf *gofpdf.Fpdf, x, y, width, height float64, g scoring.Gap) {
	pdf.SetFillColor(235, 235, 235)
	pdf.Rect(x, y, width, height, "F")

	fraction := g.CurrentScore / float64(scoring.TargetScore)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	switch g.Priority {
	case scoring.PriorityHigh:
		pdf.SetFillColor(214, 69, 65)
	case scoring.PriorityMedium:
		pdf.SetFillColor(240, 173, 78)
	default:
		pdf.SetFillColor(92, 184, 92)
	}
	pdf.Rect(x, y, width*fraction, height, "F")
}
