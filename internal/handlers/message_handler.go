package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/services"
	"admissions_backend/pkg/apperrors"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, guards *Guards) {
	internal := rg.Group("/student/internal")
	internal.Use(guards.Student)
	{
		internal.GET("/messages", h.List)
		internal.PUT("/messages/:id/read", h.MarkRead)
	}
}

func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	msgs, err := h.messageService.List(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	msgID, err := ParseParamUint(c, "id")
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	msg, err := h.messageService.MarkRead(c.Request.Context(), h.GetDB(c), userID, msgID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}
