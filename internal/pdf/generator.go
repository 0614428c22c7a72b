package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

type Generator struct {
	cfg      engine.Defaults
	fontName string
}

func NewGenerator(cfg engine.Defaults) *Generator {
	return &Generator{cfg: cfg, fontName: "Helvetica"}
}

// Generate renders the one-page proposal summary for the current version.
func (g *Generator) Generate(snap *service.EstimateSnapshot) ([]byte, error) {
	calc := engine.New(g.cfg, engine.NewRateBook(snap.Rates))
	cost := calc.Cost(snap.Members, snap.Features, snap.Version.ContingencyPct, snap.Version.ManagementReservePct)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "Estimate Proposal", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, snap.Project.Name, "", 1, "C", false, 0, "")
	if snap.Project.ClientName != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Prepared for %s", *snap.Project.ClientName), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Version %d, %s", snap.Version.VersionNumber, snap.Version.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.sectionTitle(pdf, "Commercials")
	currency := snap.Project.Currency
	g.keyValue(pdf, "Base cost", amount(cost.BaseCost, currency))
	g.keyValue(pdf, "Risk buffer", amount(cost.RiskBuffer, currency))
	g.keyValue(pdf, "Total cost", amount(cost.TotalCost, currency))

	var undefined *engine.UndefinedResultError
	revenue, err := calc.Revenue(snap.Project, snap.Members, snap.Features, snap.Milestones)
	switch {
	case err == nil:
		g.keyValue(pdf, "Revenue", amount(revenue.Revenue, currency))
		if margin, merr := calc.GrossMarginPct(revenue.Revenue, cost.BaseCost); merr == nil {
			g.keyValue(pdf, "Gross margin", engine.Round2(margin).StringFixed(2)+" %")
			if calc.MarginBelowThreshold(margin) {
				pdf.SetTextColor(200, 0, 0)
				pdf.MultiCell(0, 6, "Warning: margin is below the approval threshold.", "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
		}
	case errors.As(err, &undefined):
		g.keyValue(pdf, "Revenue", "not agreed yet")
	default:
		return nil, err
	}
	pdf.Ln(3)

	g.sectionTitle(pdf, "Delivery")
	g.keyValue(pdf, "Total effort", engine.Round2(calc.TotalEffortHours(snap.Features)).StringFixed(2)+" h")
	if summary, serr := calc.SprintAllocationSummary(
		snap.Members, snap.Features, snap.Version.ContingencyPct,
		snap.Version.SprintDurationWeeks, snap.Version.WorkingDaysPerMonth,
	); serr == nil {
		g.keyValue(pdf, "Sprints required", fmt.Sprintf("%d x %d weeks", summary.SprintsRequired, snap.Version.SprintDurationWeeks))
	}
	pdf.Ln(3)

	g.sectionTitle(pdf, "Team")
	headers := []string{"Role", "Member", "Utilization %"}
	widths := []float64{70, 70, 40}
	g.tableRow(pdf, headers, widths, true)
	for _, m := range snap.Members {
		name := ""
		if m.MemberName != nil {
			name = *m.MemberName
		}
		g.tableRow(pdf, []string{m.Role, name, engine.Round2(m.UtilizationPct).StringFixed(0)}, widths, false)
	}
	pdf.Ln(3)

	g.sectionTitle(pdf, "Scope")
	headers = []string{"Feature", "Priority", "Effort, h"}
	widths = []float64{110, 30, 40}
	g.tableRow(pdf, headers, widths, true)
	for _, f := range snap.Features {
		g.tableRow(pdf, []string{
			f.Name,
			fmt.Sprintf("%d", f.Priority),
			engine.Round2(f.EffortHours).StringFixed(2),
		}, widths, false)
	}

	if len(snap.Milestones) > 0 && snap.Project.RevenueModel == model.RevenueModelMilestone {
		pdf.Ln(3)
		g.sectionTitle(pdf, "Payment milestones")
		headers = []string{"Milestone", "Amount"}
		widths = []float64{130, 50}
		g.tableRow(pdf, headers, widths, true)
		for _, milestone := range snap.Milestones {
			g.tableRow(pdf, []string{milestone.Name, amount(milestone.Amount, currency)}, widths, false)
		}
	}

	if len(cost.UncoveredRoles) > 0 {
		pdf.Ln(3)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont(g.fontName, "", 10)
		for _, role := range cost.UncoveredRoles {
			pdf.MultiCell(0, 5, fmt.Sprintf("No rate resolved for role %q, its effort is excluded from the figures above.", role), "", "L", false)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *Generator) keyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(60, 6, key, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *Generator) tableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func amount(value decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", engine.Round2(value).StringFixed(2), currency)
}
