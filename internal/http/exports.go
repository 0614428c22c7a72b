package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/estimation-engine/internal/service"
)

const excelMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportExcel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	snap, err := h.calculations.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.excel.Generate(snap)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Type", excelMIME)
	c.Header("Content-Disposition", "attachment; filename=\""+exportFileName(snap, "xlsx")+"\"")
	c.Data(http.StatusOK, excelMIME, content)
}

func (h *Handler) exportPDF(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	snap, err := h.calculations.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.pdf.Generate(snap)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=\""+exportFileName(snap, "pdf")+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func exportFileName(snap *service.EstimateSnapshot, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, snap.Project.Name)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = snap.Project.ID.String()
	}
	return fmt.Sprintf("estimate-%s-v%d.%s", slug, snap.Version.VersionNumber, ext)
}
