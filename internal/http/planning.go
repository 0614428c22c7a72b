package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

func (h *Handler) getSprintPlan(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSprintPlanResponse(rows))
}

type planRowRequest struct {
	RowType     string                     `json:"row_type"`
	SprintNum   *int                       `json:"sprint_num"`
	WeekNum     *int                       `json:"week_num"`
	Phase       *string                    `json:"phase"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
	SortOrder   int                        `json:"sort_order"`
}

func (r planRowRequest) toModel() (model.SprintPlanRow, bool) {
	row := model.SprintPlanRow{
		RowType:     model.SprintRowType(r.RowType),
		SprintNum:   r.SprintNum,
		WeekNum:     r.WeekNum,
		Allocations: r.Allocations,
		SortOrder:   r.SortOrder,
	}
	switch row.RowType {
	case model.RowTypeSprint, model.RowTypeSprintWeek, model.RowTypePhase:
	default:
		return model.SprintPlanRow{}, false
	}
	if r.Phase != nil {
		phase, ok := model.ParseSprintPhase(*r.Phase)
		if !ok {
			return model.SprintPlanRow{}, false
		}
		row.Phase = &phase
	}
	return row, true
}

func (h *Handler) putSprintPlan(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req []planRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows := make([]model.SprintPlanRow, 0, len(req))
	for _, r := range req {
		row, ok := r.toModel()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row_type or phase"})
			return
		}
		rows = append(rows, row)
	}
	saved, err := h.plans.Put(c.Request.Context(), principal, id, rows)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSprintPlanResponse(saved))
}

type planRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) addPlanRole(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req planRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.plans.AddRole(c.Request.Context(), principal, id, req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSprintPlanResponse(rows))
}

func (h *Handler) removePlanRole(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.plans.RemoveRole(c.Request.Context(), principal, id, c.Param("role"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSprintPlanResponse(rows))
}

func (h *Handler) cost(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	breakdown, err := h.calculations.Cost(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCostResponse(breakdown))
}

func (h *Handler) sprintPlanCost(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	breakdown, err := h.calculations.SprintPlanCost(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCostResponse(breakdown))
}

func (h *Handler) revenue(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	breakdown, err := h.calculations.Revenue(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revenue":         engine.Round2(breakdown.Revenue),
		"revenue_model":   breakdown.RevenueModel,
		"uncovered_roles": breakdown.UncoveredRoles,
	})
}

func (h *Handler) profitability(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.calculations.Profitability(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cost":             toCostResponse(result.Cost),
		"revenue":          round2Ptr(result.Revenue),
		"revenue_model":    result.RevenueModel,
		"gross_margin_pct": round2Ptr(result.GrossMarginPct),
		"net_margin_pct":   round2Ptr(result.NetMarginPct),
		"margin_warning":   result.MarginWarning,
		"uncovered_roles":  result.UncoveredRoles,
	})
}

func (h *Handler) reverseMargin(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	target, err := decimal.NewFromString(c.Query("target"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a decimal percentage"})
		return
	}
	result, err := h.calculations.ReverseMargin(c.Request.Context(), id, target)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"target_margin_pct":     result.TargetMarginPct,
		"required_revenue":      engine.Round2(result.RequiredRevenue),
		"required_billing_rate": round2Ptr(result.RequiredBillingRate),
	})
}

func (h *Handler) sprintSummary(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.calculations.SprintSummary(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sprint_capacity_hours": engine.Round2(summary.SprintCapacityHours),
		"total_effort_hours":    engine.Round2(summary.TotalEffortHours),
		"sprints_required":      summary.SprintsRequired,
		"effort_per_sprint":     engine.Round2(summary.EffortPerSprint),
	})
}

func (h *Handler) roleFTE(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	fte, err := h.calculations.RoleFTE(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make(map[string]decimal.Decimal, len(fte))
	for role, v := range fte {
		out[role] = engine.Round2(v)
	}
	c.JSON(http.StatusOK, out)
}

type roleRateRequest struct {
	Role              string          `json:"role" binding:"required"`
	CostRatePerDay    decimal.Decimal `json:"cost_rate_per_day"`
	BillingRatePerDay decimal.Decimal `json:"billing_rate_per_day"`
}

type roleRateResponse struct {
	ID                string          `json:"id"`
	Role              string          `json:"role"`
	CostRatePerDay    decimal.Decimal `json:"cost_rate_per_day"`
	BillingRatePerDay decimal.Decimal `json:"billing_rate_per_day"`
}

func toRoleRateResponse(r *model.RoleDefaultRate) roleRateResponse {
	return roleRateResponse{
		ID:                r.ID.String(),
		Role:              r.Role,
		CostRatePerDay:    engine.Round2(r.CostRatePerDay),
		BillingRatePerDay: engine.Round2(r.BillingRatePerDay),
	}
}

func (h *Handler) listRates(c *gin.Context) {
	rates, err := h.rates.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]roleRateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, toRoleRateResponse(&rates[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) upsertRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req roleRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rate, err := h.rates.Upsert(c.Request.Context(), principal, service.RoleRateInput{
		Role:              req.Role,
		CostRatePerDay:    req.CostRatePerDay,
		BillingRatePerDay: req.BillingRatePerDay,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoleRateResponse(rate))
}

func (h *Handler) deleteRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	rateID, ok := h.pathUUID(c, "rateID")
	if !ok {
		return
	}
	if err := h.rates.Delete(c.Request.Context(), principal, rateID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
