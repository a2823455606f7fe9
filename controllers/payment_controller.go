package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/models"
	"azzipizza/payments"
	"azzipizza/realtime"
	"azzipizza/stores"
)

type PaymentController struct {
	orders    stores.OrderStore
	providers map[string]payments.Provider
	notifier  realtime.Notifier
	log       *slog.Logger
}

func NewPaymentController(orders stores.OrderStore, providers map[string]payments.Provider, notifier realtime.Notifier, log *slog.Logger) *PaymentController {
	return &PaymentController{orders: orders, providers: providers, notifier: notifier, log: log}
}

type createCheckoutBody struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	var body createCheckoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	objID, err := primitive.ObjectIDFromHex(body.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	order, err := pc.orders.Get(ctx, objID)
	if err != nil {
		respondError(c, err)
		return
	}

	provider, ok := pc.providers[order.PaymentMethod]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order payment method has no checkout provider"})
		return
	}

	checkout, err := provider.CreateCheckout(ctx, &models.Order{
		ID:         order.ID,
		TotalPrice: order.TotalPrice,
	})
	if err != nil {
		pc.log.Error("checkout creation failed", "orderId", body.OrderID, "provider", order.PaymentMethod, "error", err)
		respondError(c, err)
		return
	}

	if err := pc.orders.AttachPayment(ctx, objID, checkout.ProviderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checkout created", "data": checkout})
}

var settledStatuses = map[string]bool{
	"COMPLETED": true, // paypal capture
	"ACCEPTED":  true, // satispay payment
}

// Webhook handles a provider payment callback. Settlement is idempotent: a
// duplicate delivery for an already-completed payment is acknowledged
// without touching the order or re-broadcasting.
func (pc *PaymentController) Webhook(c *gin.Context) {
	name := c.DefaultQuery("provider", models.PaymentMethodSatispay)
	provider, ok := pc.providers[name]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment provider"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable callback payload"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	settlement, err := provider.ConfirmPayment(ctx, payload)
	if err != nil {
		pc.log.Error("payment confirmation failed", "provider", name, "error", err)
		respondError(c, err)
		return
	}

	if !settledStatuses[settlement.Status] {
		c.JSON(http.StatusOK, gin.H{"message": "Payment not settled", "status": settlement.Status})
		return
	}

	order, changed, err := pc.orders.SettlePayment(ctx, settlement.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusOK, gin.H{"message": "Payment already settled", "data": order})
		return
	}

	pc.notifier.OrdersChanged(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Payment completed", "data": order})
}

func (pc *PaymentController) HandleCancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment canceled"})
}
