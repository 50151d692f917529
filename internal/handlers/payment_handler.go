package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/services"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	rg.GET("/payments", h.Status)
	rg.POST("/student/coupon/validate", h.ValidateCoupon)

	payu := rg.Group("/payu")
	{
		payu.POST("/init", guards.Student, h.Initiate)
		payu.GET("/payments", h.Status)
		payu.POST("/student/coupon/validate", h.ValidateCoupon)
		payu.POST("/success", h.Callback(services.OutcomeSuccess))
		payu.POST("/failure", h.Callback(services.OutcomeFailure))
		payu.GET("/history", guards.Student, h.History)
	}
}

// Initiate godoc
// @Summary Start a hosted checkout
// @Description Records a pending payment and returns the signed form to post to the gateway.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PaymentInitRequest false "Optional coupon"
// @Success 200 {object} gateway.CheckoutParams
// @Failure 409 {object} apperrors.ErrorResponse "Already paid"
// @Failure 503 {object} apperrors.ErrorResponse "Gateway not configured"
// @Router /api/payu/init [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PaymentInitRequest
	if c.Request.ContentLength != 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	params, err := h.paymentService.Initiate(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, params)
}

// Callback handles the gateway's form post and redirects the browser to the frontend.
func (h *PaymentHandler) Callback(outcome string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			logger.CtxWithError(c.Request.Context(), "Failed to parse payment callback", err, "outcome", outcome)
			apperrors.HandleError(c, apperrors.NewBadRequestError("malformed callback"))
			return
		}

		form := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				form[key] = values[0]
			}
		}

		target, err := h.paymentService.HandleCallback(c.Request.Context(), h.GetDB(c), outcome, form)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.Redirect(http.StatusSeeOther, target)
	}
}

// Status godoc
// @Summary Payment status by transaction id
// @Tags payments
// @Produce json
// @Param transactionId query string true "Transaction id"
// @Success 200 {object} dto.PaymentStatusResponse
// @Router /api/payments [get]
func (h *PaymentHandler) Status(c *gin.Context) {
	resp, err := h.paymentService.Status(c.Request.Context(), h.GetDB(c), c.Query("transactionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	records, err := h.paymentService.History(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ValidateCoupon godoc
// @Summary Check a coupon code
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.CouponRequest true "Coupon"
// @Success 200 {object} dto.CouponResponse
// @Router /api/student/coupon/validate [post]
func (h *PaymentHandler) ValidateCoupon(c *gin.Context) {
	var req dto.CouponRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.paymentService.ValidateCoupon(c.Request.Context(), req.Code))
}
