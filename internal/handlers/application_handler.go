package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/services"
	"admissions_backend/internal/services/dto"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
	stepCacheService   services.StepCacheService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService, stepCacheService services.StepCacheService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
		stepCacheService:   stepCacheService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	application := rg.Group("/application")
	{
		application.POST("/submit", h.SubmitPayload)
		application.POST("/steps/:step", h.SaveStep)
		application.GET("/cache", h.GetCache)
	}

	internal := rg.Group("/student/internal")
	internal.Use(guards.Student)
	{
		internal.GET("/me", h.GetMine)
		internal.PUT("/update", h.Update)
		internal.POST("/submit", h.Submit)
	}
}

// GetMine godoc
// @Summary Current student's application
// @Tags application
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ApplicationView
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/student/internal/me [get]
func (h *ApplicationHandler) GetMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Get(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Update godoc
// @Summary Partially update the application
// @Description Only the fields present are changed. Rejected once the application is submitted.
// @Tags application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplicationUpdate true "Fields to change"
// @Success 200 {object} dto.ApplicationView
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /api/student/internal/update [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ApplicationUpdate
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.applicationService.Update(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Submit godoc
// @Summary Submit the application
// @Tags application
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} apperrors.ErrorResponse "Payment required"
// @Router /api/student/internal/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.Submit(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitPayload godoc
// @Summary Submit a complete application form
// @Tags application
// @Accept json
// @Produce json
// @Param request body dto.SubmitPayload true "Whole form"
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} apperrors.ErrorResponse "Payment required"
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/application/submit [post]
func (h *ApplicationHandler) SubmitPayload(c *gin.Context) {
	var req dto.SubmitPayload
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.applicationService.SubmitPayload(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveStep godoc
// @Summary Autosave one wizard step
// @Tags application
// @Accept json
// @Produce json
// @Param step path string true "Step name"
// @Param request body dto.StepPayload true "Step data"
// @Success 200 {object} dto.StepSavedResponse
// @Failure 409 {object} apperrors.ErrorResponse "Stale version"
// @Router /api/application/steps/{step} [post]
func (h *ApplicationHandler) SaveStep(c *gin.Context) {
	var req dto.StepPayload
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.stepCacheService.SaveStep(c.Request.Context(), h.GetDB(c), c.Param("step"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCache returns one session when session_id is given, otherwise every cached draft.
func (h *ApplicationHandler) GetCache(c *gin.Context) {
	if sessionID := c.Query("session_id"); sessionID != "" {
		cached, err := h.stepCacheService.Get(c.Request.Context(), h.GetDB(c), sessionID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, cached)
		return
	}

	all, err := h.stepCacheService.List(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}
