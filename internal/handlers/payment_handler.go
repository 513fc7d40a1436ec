package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/pkg/payment"
)

// PaymentHandler bridges the booking UI to the Razorpay gateway
type PaymentHandler struct {
	gateway *payment.Gateway
	logger  logrus.FieldLogger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(gateway *payment.Gateway, logger logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, logger: logger}
}

// CreateOrderRequest is the payload for POST /payment/order.
// Amount is in minor units (paise).
type CreateOrderRequest struct {
	Amount   int64  `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// VerifyRequest is the payload for POST /payment/verify
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CreateOrder handles POST /payment/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	order, err := h.gateway.CreateOrder(c.Request.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		var gatewayErr *payment.GatewayError
		var networkErr *payment.NetworkError
		switch {
		case errors.Is(err, payment.ErrNotConfigured):
			h.logger.Error("Payment order requested but Razorpay is not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway not configured"})
		case errors.As(err, &gatewayErr):
			h.logger.WithFields(logrus.Fields{
				"status":  gatewayErr.StatusCode,
				"message": gatewayErr.Message,
			}).Error("Payment gateway rejected order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": gatewayErr.Message})
		case errors.As(err, &networkErr):
			h.logger.WithError(err).Error("Payment gateway unreachable")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Network error - unable to connect to payment gateway"})
		default:
			h.logger.WithError(err).Error("Order creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Order creation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "keyId": h.gateway.KeyID()})
}

// VerifyPayment handles POST /payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	valid := h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature)
	if !valid {
		h.logger.WithFields(logrus.Fields{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
		}).Warn("Payment signature verification failed")
	}

	c.JSON(http.StatusOK, gin.H{"success": valid})
}
