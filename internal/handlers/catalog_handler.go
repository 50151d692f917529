package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/services"
)

type CatalogHandler struct {
	*BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(base *BaseHandler, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    base,
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/campuses", h.Campuses)
		catalog.GET("/programs", h.Programs)
	}
}

// Campuses godoc
// @Summary Active campuses
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.CatalogResponse
// @Router /api/catalog/campuses [get]
func (h *CatalogHandler) Campuses(c *gin.Context) {
	resp, err := h.catalogService.Campuses(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Programs godoc
// @Summary Active programs
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.CatalogResponse
// @Router /api/catalog/programs [get]
func (h *CatalogHandler) Programs(c *gin.Context) {
	resp, err := h.catalogService.Programs(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
