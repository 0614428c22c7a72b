package excel

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

type Generator struct {
	cfg engine.Defaults
}

func NewGenerator(cfg engine.Defaults) *Generator {
	return &Generator{cfg: cfg}
}

// Generate renders the estimate workbook: a summary sheet plus team, feature
// and sprint plan detail sheets.
func (g *Generator) Generate(snap *service.EstimateSnapshot) ([]byte, error) {
	file := excelize.NewFile()
	calc := engine.New(g.cfg, engine.NewRateBook(snap.Rates))

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, snap, calc); err != nil {
		return nil, err
	}

	file.NewSheet("Team")
	if err := g.writeTeam(file, "Team", snap); err != nil {
		return nil, err
	}

	file.NewSheet("Features")
	if err := g.writeFeatures(file, "Features", snap); err != nil {
		return nil, err
	}

	file.NewSheet("Sprint Plan")
	if err := g.writeSprintPlan(file, "Sprint Plan", snap); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, snap *service.EstimateSnapshot, calc *engine.Calculator) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	cost := calc.Cost(snap.Members, snap.Features, snap.Version.ContingencyPct, snap.Version.ManagementReservePct)

	set("A1", "Project")
	set("B1", snap.Project.Name)
	set("A2", "Client")
	set("B2", formatString(snap.Project.ClientName))
	set("A3", "Revenue model")
	set("B3", revenueModelLabel(snap.Project.RevenueModel))
	set("A4", "Currency")
	set("B4", snap.Project.Currency)
	set("A5", "Version")
	set("B5", fmt.Sprintf("v%d (%s)", snap.Version.VersionNumber, snap.Version.Status))
	set("A6", "Contingency %")
	set("B6", formatDecimal(snap.Version.ContingencyPct))
	set("A7", "Management reserve %")
	set("B7", formatDecimal(snap.Version.ManagementReservePct))

	set("A9", "Total effort, h")
	set("B9", formatDecimal(calc.TotalEffortHours(snap.Features)))
	set("A10", "Base cost")
	set("B10", formatDecimal(cost.BaseCost))
	set("A11", "Risk buffer")
	set("B11", formatDecimal(cost.RiskBuffer))
	set("A12", "Total cost")
	set("B12", formatDecimal(cost.TotalCost))
	if snap.Currency != nil && snap.Currency.TargetCurrency != snap.Currency.BaseCurrency {
		set("A13", fmt.Sprintf("Total cost, %s (rate %s)", snap.Currency.TargetCurrency, formatDecimal(snap.Currency.Rate)))
		set("B13", formatDecimal(snap.Currency.Convert(cost.TotalCost)))
	}

	row := 15
	var undefined *engine.UndefinedResultError
	revenue, err := calc.Revenue(snap.Project, snap.Members, snap.Features, snap.Milestones)
	switch {
	case err == nil:
		set(fmt.Sprintf("A%d", row), "Revenue")
		set(fmt.Sprintf("B%d", row), formatDecimal(revenue.Revenue))
		row++
		if margin, merr := calc.GrossMarginPct(revenue.Revenue, cost.BaseCost); merr == nil {
			set(fmt.Sprintf("A%d", row), "Gross margin %")
			set(fmt.Sprintf("B%d", row), formatDecimal(margin))
			row++
			if calc.MarginBelowThreshold(margin) {
				set(fmt.Sprintf("A%d", row), "Margin warning")
				set(fmt.Sprintf("B%d", row), "below threshold")
				row++
			}
		}
	case errors.As(err, &undefined):
		set(fmt.Sprintf("A%d", row), "Revenue")
		set(fmt.Sprintf("B%d", row), "not agreed")
		row++
	default:
		return err
	}

	if summary, serr := calc.SprintAllocationSummary(
		snap.Members, snap.Features, snap.Version.ContingencyPct,
		snap.Version.SprintDurationWeeks, snap.Version.WorkingDaysPerMonth,
	); serr == nil {
		set(fmt.Sprintf("A%d", row), "Sprints required")
		set(fmt.Sprintf("B%d", row), summary.SprintsRequired)
		row++
	}

	if len(cost.UncoveredRoles) > 0 {
		set(fmt.Sprintf("A%d", row), "Roles without rates")
		for i, role := range cost.UncoveredRoles {
			set(fmt.Sprintf("B%d", row+i), role)
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	return nil
}

func (g *Generator) writeTeam(file *excelize.File, sheet string, snap *service.EstimateSnapshot) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Role", "Member", "Utilization %", "Cost rate / day", "Billing rate / day"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	book := engine.NewRateBook(snap.Rates)
	for i, m := range snap.Members {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), m.Role)
		set(fmt.Sprintf("B%d", row), formatString(m.MemberName))
		set(fmt.Sprintf("C%d", row), formatDecimal(m.UtilizationPct))
		if rate, ok := book.CostRatePerDay(m); ok {
			set(fmt.Sprintf("D%d", row), formatDecimal(rate))
		}
		if rate, ok := book.BillingRatePerDay(m); ok {
			set(fmt.Sprintf("E%d", row), formatDecimal(rate))
		}
	}

	fteRow := len(snap.Members) + 3
	set(fmt.Sprintf("A%d", fteRow), "FTE by role")
	roleFTE := engine.ProjectRoleFTE(snap.Members)
	for i, role := range model.DistinctRoles(snap.Members) {
		set(fmt.Sprintf("A%d", fteRow+1+i), role.Display())
		set(fmt.Sprintf("B%d", fteRow+1+i), formatDecimal(roleFTE[role.Display()]))
	}

	_ = file.SetColWidth(sheet, "A", "B", 26)
	_ = file.SetColWidth(sheet, "C", "E", 16)
	return nil
}

func (g *Generator) writeFeatures(file *excelize.File, sheet string, snap *service.EstimateSnapshot) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Feature", "Priority", "Effort, h", "Story points", "Task", "Task role", "Task effort, h"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	row := 2
	for _, f := range snap.Features {
		set(fmt.Sprintf("A%d", row), f.Name)
		set(fmt.Sprintf("B%d", row), f.Priority)
		set(fmt.Sprintf("C%d", row), formatDecimal(f.EffortHours))
		if f.EffortStoryPoints != nil {
			set(fmt.Sprintf("D%d", row), *f.EffortStoryPoints)
		}
		if len(f.Tasks) == 0 {
			row++
			continue
		}
		for _, task := range f.Tasks {
			set(fmt.Sprintf("E%d", row), task.Name)
			set(fmt.Sprintf("F%d", row), task.Role)
			set(fmt.Sprintf("G%d", row), formatDecimal(task.EffortHours))
			row++
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "D", 12)
	_ = file.SetColWidth(sheet, "E", "F", 26)
	_ = file.SetColWidth(sheet, "G", "G", 14)
	return nil
}

func (g *Generator) writeSprintPlan(file *excelize.File, sheet string, snap *service.EstimateSnapshot) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	roles := engine.PlanRoles(snap.PlanRows, model.DistinctRoles(snap.Members))

	set("A1", "Period")
	for i, role := range roles {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		set(cell, role.Display())
	}

	for i, planRow := range snap.PlanRows {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), periodLabel(planRow))
		for j, role := range roles {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			set(cell, formatDecimal(planRow.Allocations[role.Display()]))
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	if len(roles) > 0 {
		last, _ := excelize.ColumnNumberToName(len(roles) + 1)
		_ = file.SetColWidth(sheet, "B", last, 16)
	}
	return nil
}

func periodLabel(row model.SprintPlanRow) string {
	switch {
	case row.IsPhase():
		return phaseLabel(*row.Phase)
	case row.SprintNum != nil:
		return fmt.Sprintf("Sprint %d", *row.SprintNum)
	default:
		return "Sprint"
	}
}

func phaseLabel(p model.SprintPhase) string {
	switch p {
	case model.PhasePreUAT:
		return "Pre-UAT"
	case model.PhaseUAT:
		return "UAT"
	case model.PhaseGoLive:
		return "Go-live"
	default:
		return string(p)
	}
}

func revenueModelLabel(m model.RevenueModel) string {
	switch m {
	case model.RevenueModelFixed:
		return "Fixed price"
	case model.RevenueModelTM:
		return "Time & materials"
	case model.RevenueModelMilestone:
		return "Milestone-based"
	default:
		return string(m)
	}
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDecimal(value decimal.Decimal) string {
	return engine.Round2(value).StringFixed(2)
}
