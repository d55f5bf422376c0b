package handler

import (
	"bytes"
	"errors"
	"net/http"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/service"
	apperrors "cinema-tickets/pkg/app_errors"
	"cinema-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	service service.TicketService
}

func NewPurchaseHandler(service service.TicketService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("purchases", h.PurchaseTickets)
		router.POST("purchases/receipt", h.PurchaseTicketsWithReceipt)
	}
}

func (h *PurchaseHandler) PurchaseTickets(c *gin.Context) {
	var req model.PurchaseRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	summary, err := h.service.PurchaseTickets(c, req.AccountID, req.TicketTypeRequests()...)
	if err != nil {
		h.handlePurchaseError(c, err, "PurchaseTickets")
		return
	}

	c.JSON(http.StatusCreated, model.PurchaseResponse{
		AccountID: req.AccountID,
		Summary:   summary,
	})
}

func (h *PurchaseHandler) PurchaseTicketsWithReceipt(c *gin.Context) {
	var req model.PurchaseRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	summary, err := h.service.PurchaseTickets(c, req.AccountID, req.TicketTypeRequests()...)
	if err != nil {
		h.handlePurchaseError(c, err, "PurchaseTicketsWithReceipt")
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderReceipt(&buf, req.AccountID, summary); err != nil {
		h.handlePurchaseError(c, err, "PurchaseTicketsWithReceipt")
		return
	}

	c.Data(http.StatusCreated, "text/plain; charset=utf-8", buf.Bytes())
}

// Helper functions

func (h *PurchaseHandler) handlePurchaseError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidAccount):
		log.Warn("Invalid account")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrUnknownTicketType):
		log.Warn("Unknown ticket type")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrInvalidPurchase):
		log.Warn("Invalid purchase")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		log.Warn("Insufficient seats")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient seats",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
