package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/excel"
	"github.com/nurpe/estimation-engine/internal/http/middleware"
	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/pdf"
	"github.com/nurpe/estimation-engine/internal/service"
)

type Handler struct {
	projects     *service.ProjectService
	versions     *service.VersionService
	team         *service.TeamService
	features     *service.FeatureService
	plans        *service.SprintPlanService
	calculations *service.CalculationService
	rates        *service.RateService
	drafts       *service.DraftService
	excel        *excel.Generator
	pdf          *pdf.Generator
	log          zerolog.Logger
}

type Services struct {
	Projects     *service.ProjectService
	Versions     *service.VersionService
	Team         *service.TeamService
	Features     *service.FeatureService
	Plans        *service.SprintPlanService
	Calculations *service.CalculationService
	Rates        *service.RateService
	Drafts       *service.DraftService
}

func NewHandler(services Services, xlsx *excel.Generator, pdfGen *pdf.Generator, log zerolog.Logger) *Handler {
	return &Handler{
		projects:     services.Projects,
		versions:     services.Versions,
		team:         services.Team,
		features:     services.Features,
		plans:        services.Plans,
		calculations: services.Calculations,
		rates:        services.Rates,
		drafts:       services.Drafts,
		excel:        xlsx,
		pdf:          pdfGen,
		log:          log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(authMiddleware)

	api.POST("/projects", h.createProject)
	api.GET("/projects", h.listProjects)
	api.GET("/projects/:id", h.getProject)
	api.PATCH("/projects/:id", h.updateProject)
	api.DELETE("/projects/:id", h.deleteProject)
	api.GET("/projects/:id/summary", h.projectSummary)
	api.PUT("/projects/:id/milestones", h.setMilestones)
	api.GET("/projects/:id/audit", h.auditTrail)
	api.GET("/projects/:id/currency", h.currencySnapshot)
	api.POST("/projects/:id/currency/refresh", h.refreshCurrency)

	api.GET("/projects/:id/version", h.currentVersion)
	api.POST("/projects/:id/versions", h.newVersion)
	api.PATCH("/projects/:id/versions/:versionID", h.updateVersion)
	api.POST("/projects/:id/versions/:versionID/transition", h.transitionVersion)
	api.POST("/projects/:id/versions/:versionID/lock", h.lockVersion)
	api.POST("/projects/:id/versions/:versionID/unlock", h.unlockVersion)

	api.GET("/projects/:id/team", h.listTeam)
	api.POST("/projects/:id/team", h.addTeamMember)
	api.PATCH("/projects/:id/team/:memberID", h.updateTeamMember)
	api.DELETE("/projects/:id/team/:memberID", h.deleteTeamMember)

	api.GET("/projects/:id/features", h.listFeatures)
	api.POST("/projects/:id/features", h.addFeature)
	api.PATCH("/projects/:id/features/:featureID", h.updateFeature)
	api.DELETE("/projects/:id/features/:featureID", h.deleteFeature)

	api.GET("/projects/:id/sprint-plan", h.getSprintPlan)
	api.PUT("/projects/:id/sprint-plan", h.putSprintPlan)
	api.POST("/projects/:id/sprint-plan/roles", h.addPlanRole)
	api.DELETE("/projects/:id/sprint-plan/roles/:role", h.removePlanRole)

	api.GET("/projects/:id/calculations/cost", h.cost)
	api.GET("/projects/:id/calculations/sprint-plan-cost", h.sprintPlanCost)
	api.GET("/projects/:id/calculations/revenue", h.revenue)
	api.GET("/projects/:id/calculations/profitability", h.profitability)
	api.GET("/projects/:id/calculations/reverse-margin", h.reverseMargin)
	api.GET("/projects/:id/calculations/sprints", h.sprintSummary)
	api.GET("/projects/:id/calculations/fte", h.roleFTE)

	api.GET("/rates", h.listRates)
	api.PUT("/rates", h.upsertRate)
	api.DELETE("/rates/:rateID", h.deleteRate)

	api.POST("/projects/:id/drafts/features", h.submitFeatureDrafts)
	api.GET("/projects/:id/drafts/features", h.listFeatureDrafts)
	api.POST("/projects/:id/drafts/features/:draftID/promote", h.promoteFeatureDraft)
	api.POST("/projects/:id/drafts/team", h.submitTeamDrafts)
	api.GET("/projects/:id/drafts/team", h.listTeamDrafts)
	api.POST("/projects/:id/drafts/team/:draftID/promote", h.promoteTeamDraft)

	api.GET("/projects/:id/export/xlsx", h.exportExcel)
	api.GET("/projects/:id/export/pdf", h.exportPDF)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *engine.ValidationError
	var undefined *engine.UndefinedResultError
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrJustificationRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "JUSTIFICATION_REQUIRED"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "code": validation.Code})
	case errors.As(err, &undefined):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": undefined.Code, "code": undefined.Code})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
