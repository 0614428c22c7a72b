package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

type createProjectRequest struct {
	Name                string           `json:"name" binding:"required"`
	ClientName          *string          `json:"client_name"`
	RevenueModel        string           `json:"revenue_model" binding:"required"`
	Currency            string           `json:"currency"`
	BaseCurrency        string           `json:"base_currency"`
	FXRate              *decimal.Decimal `json:"fx_rate"`
	SprintDurationWeeks int              `json:"sprint_duration_weeks"`
	FixedRevenue        *decimal.Decimal `json:"fixed_revenue"`
}

type projectResponse struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	ClientName          *string          `json:"client_name,omitempty"`
	RevenueModel        string           `json:"revenue_model"`
	Currency            string           `json:"currency"`
	SprintDurationWeeks int              `json:"sprint_duration_weeks"`
	FixedRevenue        *decimal.Decimal `json:"fixed_revenue,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{
		ID:                  p.ID,
		Name:                p.Name,
		ClientName:          p.ClientName,
		RevenueModel:        string(p.RevenueModel),
		Currency:            p.Currency,
		SprintDurationWeeks: p.SprintDurationWeeks,
		FixedRevenue:        round2Ptr(p.FixedRevenue),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func round2Ptr(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	rounded := engine.Round2(*v)
	return &rounded
}

func (h *Handler) createProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := h.projects.Create(c.Request.Context(), principal, service.ProjectInput{
		Name:                req.Name,
		ClientName:          req.ClientName,
		RevenueModel:        model.RevenueModel(req.RevenueModel),
		Currency:            req.Currency,
		BaseCurrency:        req.BaseCurrency,
		FXRate:              req.FXRate,
		SprintDurationWeeks: req.SprintDurationWeeks,
		FixedRevenue:        req.FixedRevenue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getProject(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

type updateProjectRequest struct {
	Name                *string          `json:"name"`
	ClientName          *string          `json:"client_name"`
	RevenueModel        *string          `json:"revenue_model"`
	FixedRevenue        *decimal.Decimal `json:"fixed_revenue"`
	SprintDurationWeeks *int             `json:"sprint_duration_weeks"`
}

func (h *Handler) updateProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := service.ProjectUpdateInput{
		Name:                req.Name,
		ClientName:          req.ClientName,
		FixedRevenue:        req.FixedRevenue,
		SprintDurationWeeks: req.SprintDurationWeeks,
	}
	if req.RevenueModel != nil {
		m := model.RevenueModel(*req.RevenueModel)
		input.RevenueModel = &m
	}
	project, err := h.projects.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *Handler) deleteProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) projectSummary(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.projects.Summary(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":        toProjectResponse(&summary.Project),
		"version_number": summary.VersionNumber,
		"status":         summary.Status,
		"is_locked":      summary.IsLocked,
		"total_cost":     engine.Round2(summary.TotalCost),
		"revenue":        round2Ptr(summary.Revenue),
		"margin_pct":     round2Ptr(summary.GrossMargin),
		"margin_warning": summary.MarginWarning,
	})
}

type milestoneRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) setMilestones(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req []milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]model.Milestone, 0, len(req))
	for _, m := range req {
		items = append(items, model.Milestone{Name: m.Name, Amount: m.Amount})
	}
	if err := h.projects.SetMilestones(c.Request.Context(), principal, id, items); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) auditTrail(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	trail, err := h.versions.AuditTrail(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuditResponse(trail))
}

func (h *Handler) currencySnapshot(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.projects.CurrencySnapshot(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCurrencyResponse(snapshot))
}

type refreshCurrencyRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

func (h *Handler) refreshCurrency(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req refreshCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snapshot, err := h.projects.RefreshCurrencySnapshot(c.Request.Context(), principal, id, req.Rate)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCurrencyResponse(snapshot))
}

type versionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ProjectID            uuid.UUID       `json:"project_id"`
	VersionNumber        int             `json:"version_number"`
	Status               string          `json:"status"`
	IsLocked             bool            `json:"is_locked"`
	LockedByUserID       *uuid.UUID      `json:"locked_by_user_id,omitempty"`
	LockedAt             *time.Time      `json:"locked_at,omitempty"`
	ContingencyPct       decimal.Decimal `json:"contingency_pct"`
	ManagementReservePct decimal.Decimal `json:"management_reserve_pct"`
	EstimationAuthority  *string         `json:"estimation_authority,omitempty"`
	Notes                *string         `json:"notes,omitempty"`
	SprintDurationWeeks  int             `json:"sprint_duration_weeks"`
	WorkingDaysPerMonth  int             `json:"working_days_per_month"`
	HoursPerDay          int             `json:"hours_per_day"`
	CreatedAt            time.Time       `json:"created_at"`
}

func toVersionResponse(v *model.ProjectVersion) versionResponse {
	return versionResponse{
		ID:                   v.ID,
		ProjectID:            v.ProjectID,
		VersionNumber:        v.VersionNumber,
		Status:               string(v.Status),
		IsLocked:             v.IsLocked,
		LockedByUserID:       v.LockedByUserID,
		LockedAt:             v.LockedAt,
		ContingencyPct:       v.ContingencyPct,
		ManagementReservePct: v.ManagementReservePct,
		EstimationAuthority:  v.EstimationAuthority,
		Notes:                v.Notes,
		SprintDurationWeeks:  v.SprintDurationWeeks,
		WorkingDaysPerMonth:  v.WorkingDaysPerMonth,
		HoursPerDay:          v.HoursPerDay,
		CreatedAt:            v.CreatedAt,
	}
}

func (h *Handler) currentVersion(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	version, err := h.versions.Current(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVersionResponse(version))
}

func (h *Handler) newVersion(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	version, err := h.projects.NewVersion(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVersionResponse(version))
}

type updateVersionRequest struct {
	ContingencyPct       *decimal.Decimal `json:"contingency_pct"`
	ManagementReservePct *decimal.Decimal `json:"management_reserve_pct"`
	EstimationAuthority  *string          `json:"estimation_authority"`
	Notes                *string          `json:"notes"`
}

func (h *Handler) updateVersion(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathUUID(c, "versionID")
	if !ok {
		return
	}
	var req updateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	version, err := h.versions.Update(c.Request.Context(), principal, projectID, versionID, service.VersionUpdateInput{
		ContingencyPct:       req.ContingencyPct,
		ManagementReservePct: req.ManagementReservePct,
		EstimationAuthority:  req.EstimationAuthority,
		Notes:                req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVersionResponse(version))
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) transitionVersion(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathUUID(c, "versionID")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, valid := model.ParseVersionStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	version, err := h.versions.Transition(c.Request.Context(), principal, projectID, versionID, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVersionResponse(version))
}

func (h *Handler) lockVersion(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathUUID(c, "versionID")
	if !ok {
		return
	}
	version, err := h.versions.Lock(c.Request.Context(), principal, projectID, versionID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVersionResponse(version))
}

type unlockRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) unlockVersion(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathUUID(c, "versionID")
	if !ok {
		return
	}
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	version, err := h.versions.Unlock(c.Request.Context(), principal, projectID, versionID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVersionResponse(version))
}
