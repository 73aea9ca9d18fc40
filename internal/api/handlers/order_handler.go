package handlers

import (
	"net/http"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc services.OrderService
}

func NewOrderHandler(svc services.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type CreateOrderRequest struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name" binding:"required"`
	Quantity        int    `json:"quantity"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CustomerInfo    string `json:"customer_info"`
	Notes           string `json:"notes"`
	Source          string `json:"source"`
	PaymentMethod   string `json:"payment_method"`
}

type UpdateOrderRequest struct {
	Status          *string `json:"status"`
	CustomerName    *string `json:"customer_name"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerAddress *string `json:"customer_address"`
	Notes           *string `json:"notes"`
	Quantity        *int    `json:"quantity"`
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	o, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "OrderHandler.Create", "invalid request body", err))
		return
	}

	o, err := h.svc.Create(c.Request.Context(), userID, services.CreateOrderInput{
		ProductID:       req.ProductID,
		ProductName:     req.ProductName,
		Quantity:        req.Quantity,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerInfo:    req.CustomerInfo,
		Notes:           req.Notes,
		Source:          models.OrderSource(req.Source),
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "OrderHandler.Update", "invalid request body", err))
		return
	}

	in := services.UpdateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		Quantity:        req.Quantity,
	}
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		in.Status = &status
	}

	o, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "OrderHandler.UpdateStatus", "invalid request body", err))
		return
	}

	status := models.OrderStatus(req.Status)
	o, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), services.UpdateOrderInput{Status: &status})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
