package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/services"
	"admissions_backend/internal/services/dto"
)

type StudentHandler struct {
	*BaseHandler
	studentService services.StudentService
}

func NewStudentHandler(base *BaseHandler, studentService services.StudentService) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    base,
		studentService: studentService,
	}
}

type emailQuery struct {
	Email string `form:"email" validate:"required,email"`
}

func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	rg.POST("/student/register", h.Register)
	rg.GET("/register/details", h.Details)
	rg.GET("/applications", h.Lookup)

	internal := rg.Group("/student/internal")
	internal.Use(guards.Student)
	{
		internal.GET("/profile", h.GetProfile)
		internal.PUT("/profile", h.UpdateProfile)
	}
}

// Register godoc
// @Summary Register a student
// @Description Creates the student with a draft application. The email must be new.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration form"
// @Success 201 {object} dto.UserView
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Router /api/student/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.studentService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Details godoc
// @Summary Registration status by email
// @Tags students
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} dto.RegistrationDetails
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/register/details [get]
func (h *StudentHandler) Details(c *gin.Context) {
	var q emailQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	details, err := h.studentService.Details(c.Request.Context(), h.GetDB(c), q.Email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *StudentHandler) Lookup(c *gin.Context) {
	var q emailQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	applicant, err := h.studentService.Lookup(c.Request.Context(), h.GetDB(c), q.Email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applicant)
}

func (h *StudentHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.studentService.Profile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.studentService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
