package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/services"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	admin := rg.Group("/admin")
	admin.Use(guards.Admin...)
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/users", h.Users)
		admin.GET("/payments", h.Payments)
		admin.GET("/applications-pending", h.PendingApplications)
		admin.GET("/applications", h.Applications)
		admin.GET("/documents", h.Documents)
		admin.PUT("/applications/:id/status", h.UpdateApplicationStatus)
	}
}

// Stats godoc
// @Summary Dashboard counters and registration trend
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminStats
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) Payments(c *gin.Context) {
	payments, err := h.adminService.Payments(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) PendingApplications(c *gin.Context) {
	pending, err := h.adminService.PendingApplications(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *AdminHandler) Applications(c *gin.Context) {
	apps, err := h.adminService.Applications(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *AdminHandler) Documents(c *gin.Context) {
	groups, err := h.adminService.Documents(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// UpdateApplicationStatus godoc
// @Summary Move an application along the review workflow
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Param request body dto.ApplicationStatusUpdate true "New status"
// @Success 200 {object} dto.ApplicationView
// @Failure 409 {object} apperrors.ErrorResponse "Transition not allowed"
// @Router /api/admin/applications/{id}/status [put]
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	appID, err := ParseParamUint(c, "id")
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	var req dto.ApplicationStatusUpdate
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.adminService.UpdateApplicationStatus(c.Request.Context(), h.GetDB(c), appID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
