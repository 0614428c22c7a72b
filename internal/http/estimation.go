package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

type teamMemberRequest struct {
	Role                string           `json:"role"`
	MemberName          *string          `json:"member_name"`
	CostRatePerDay      *decimal.Decimal `json:"cost_rate_per_day"`
	BillingRatePerDay   *decimal.Decimal `json:"billing_rate_per_day"`
	MonthlyCostRate     *decimal.Decimal `json:"monthly_cost_rate"`
	UtilizationPct      decimal.Decimal  `json:"utilization_pct"`
	WorkingDaysPerMonth int              `json:"working_days_per_month"`
	HoursPerDay         int              `json:"hours_per_day"`
}

func (r teamMemberRequest) toInput() service.TeamMemberInput {
	return service.TeamMemberInput{
		Role:                r.Role,
		MemberName:          r.MemberName,
		CostRatePerDay:      r.CostRatePerDay,
		BillingRatePerDay:   r.BillingRatePerDay,
		MonthlyCostRate:     r.MonthlyCostRate,
		UtilizationPct:      r.UtilizationPct,
		WorkingDaysPerMonth: r.WorkingDaysPerMonth,
		HoursPerDay:         r.HoursPerDay,
	}
}

func (h *Handler) listTeam(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	members, err := h.team.List(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]teamMemberResponse, 0, len(members))
	for i := range members {
		out = append(out, toTeamMemberResponse(&members[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) addTeamMember(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req teamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := h.team.Add(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamMemberResponse(member))
}

func (h *Handler) updateTeamMember(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(c, "memberID")
	if !ok {
		return
	}
	var req teamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := h.team.Update(c.Request.Context(), principal, id, memberID, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamMemberResponse(member))
}

func (h *Handler) deleteTeamMember(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(c, "memberID")
	if !ok {
		return
	}
	if err := h.team.Delete(c.Request.Context(), principal, id, memberID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type featureTaskRequest struct {
	Name        string          `json:"name"`
	EffortHours decimal.Decimal `json:"effort_hours"`
	Role        string          `json:"role"`
}

type featureRequest struct {
	Name              string               `json:"name"`
	Description       *string              `json:"description"`
	Priority          *int                 `json:"priority"`
	EffortHours       *decimal.Decimal     `json:"effort_hours"`
	EffortStoryPoints *int                 `json:"effort_story_points"`
	Tasks             []featureTaskRequest `json:"tasks"`
	Justification     *string              `json:"justification"`
}

func (r featureRequest) toInput() service.FeatureInput {
	input := service.FeatureInput{
		Name:              r.Name,
		Description:       r.Description,
		Priority:          r.Priority,
		EffortHours:       r.EffortHours,
		EffortStoryPoints: r.EffortStoryPoints,
		Justification:     r.Justification,
	}
	if r.Tasks != nil {
		input.Tasks = make([]model.FeatureTask, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			input.Tasks = append(input.Tasks, model.FeatureTask{
				Name:        t.Name,
				EffortHours: t.EffortHours,
				Role:        t.Role,
			})
		}
	}
	return input
}

type allocationResponse struct {
	Role          string          `json:"role"`
	EffortHours   decimal.Decimal `json:"effort_hours"`
	AllocationPct decimal.Decimal `json:"allocation_pct"`
	FTE           decimal.Decimal `json:"fte"`
}

type featureResponse struct {
	Feature     featureBody          `json:"feature"`
	Allocations []allocationResponse `json:"allocations"`
}

func toFeatureResponse(view service.FeatureView) featureResponse {
	out := featureResponse{
		Feature:     toFeatureBody(&view.Feature),
		Allocations: make([]allocationResponse, 0, len(view.Allocations)),
	}
	for _, a := range view.Allocations {
		out.Allocations = append(out.Allocations, allocationResponse{
			Role:          a.Role.Display(),
			EffortHours:   engine.Round2(a.EffortHours),
			AllocationPct: engine.Round2(a.AllocationPct),
			FTE:           engine.Round2(a.FTE),
		})
	}
	return out
}

func (h *Handler) listFeatures(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	views, err := h.features.List(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]featureResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toFeatureResponse(view))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) addFeature(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	feature, err := h.features.Add(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFeatureBody(feature))
}

func (h *Handler) updateFeature(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	featureID, ok := h.pathUUID(c, "featureID")
	if !ok {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	feature, err := h.features.Update(c.Request.Context(), principal, id, featureID, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFeatureBody(feature))
}

func (h *Handler) deleteFeature(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	featureID, ok := h.pathUUID(c, "featureID")
	if !ok {
		return
	}
	if err := h.features.Delete(c.Request.Context(), principal, id, featureID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type featureDraftRequest struct {
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Priority    int                  `json:"priority"`
	EffortHours decimal.Decimal      `json:"effort_hours"`
	Tasks       []featureTaskRequest `json:"tasks"`
	RawSource   *string              `json:"raw_source"`
}

func (h *Handler) submitFeatureDrafts(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req []featureDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inputs := make([]service.FeatureDraftInput, 0, len(req))
	for _, d := range req {
		input := service.FeatureDraftInput{
			Name:        d.Name,
			Description: d.Description,
			Priority:    d.Priority,
			EffortHours: d.EffortHours,
			RawSource:   d.RawSource,
		}
		for _, t := range d.Tasks {
			input.Tasks = append(input.Tasks, model.FeatureTask{
				Name:        t.Name,
				EffortHours: t.EffortHours,
				Role:        t.Role,
			})
		}
		inputs = append(inputs, input)
	}
	drafts, err := h.drafts.SubmitFeatureDrafts(c.Request.Context(), id, inputs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFeatureDraftResponses(drafts))
}

func (h *Handler) listFeatureDrafts(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	drafts, err := h.drafts.ListFeatureDrafts(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFeatureDraftResponses(drafts))
}

func (h *Handler) promoteFeatureDraft(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftID")
	if !ok {
		return
	}
	feature, err := h.drafts.PromoteFeatureDraft(c.Request.Context(), principal, id, draftID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFeatureBody(feature))
}

type teamDraftRequest struct {
	Role              string           `json:"role"`
	UtilizationPct    decimal.Decimal  `json:"utilization_pct"`
	CostRatePerDay    *decimal.Decimal `json:"cost_rate_per_day"`
	BillingRatePerDay *decimal.Decimal `json:"billing_rate_per_day"`
	RawSource         *string          `json:"raw_source"`
}

func (h *Handler) submitTeamDrafts(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req []teamDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inputs := make([]service.TeamMemberDraftInput, 0, len(req))
	for _, d := range req {
		inputs = append(inputs, service.TeamMemberDraftInput{
			Role:              d.Role,
			UtilizationPct:    d.UtilizationPct,
			CostRatePerDay:    d.CostRatePerDay,
			BillingRatePerDay: d.BillingRatePerDay,
			RawSource:         d.RawSource,
		})
	}
	drafts, err := h.drafts.SubmitTeamMemberDrafts(c.Request.Context(), id, inputs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamDraftResponses(drafts))
}

func (h *Handler) listTeamDrafts(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	drafts, err := h.drafts.ListTeamMemberDrafts(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamDraftResponses(drafts))
}

func (h *Handler) promoteTeamDraft(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	draftID, ok := h.pathUUID(c, "draftID")
	if !ok {
		return
	}
	member, err := h.drafts.PromoteTeamMemberDraft(c.Request.Context(), principal, id, draftID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamMemberResponse(member))
}
