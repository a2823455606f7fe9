package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/models"
	"azzipizza/pricing"
	"azzipizza/realtime"
	"azzipizza/stores"
)

type OrderController struct {
	orders   stores.OrderStore
	pricer   *pricing.Engine
	notifier realtime.Notifier
}

func NewOrderController(orders stores.OrderStore, pricer *pricing.Engine, notifier realtime.Notifier) *OrderController {
	return &OrderController{orders: orders, pricer: pricer, notifier: notifier}
}

// ingredientSelection accepts both a bare name ("extra cheese") and the
// object form ({"name": "extra cheese", "price": 1.5}) frontends have sent
// over time. Only the name is used; prices always come from the menu.
type ingredientSelection struct {
	Name string
}

func (s *ingredientSelection) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Name = obj.Name
	return nil
}

type cartEntryBody struct {
	MenuItemID          string                `json:"menuItemId"`
	Quantity            int                   `json:"quantity"`
	SelectedIngredients []ingredientSelection `json:"selectedIngredients"`
	Customizations      string                `json:"customizations"`
}

type createOrderBody struct {
	Items           []cartEntryBody        `json:"items"`
	Name            string                 `json:"name"`
	PhoneNumber     string                 `json:"phoneNumber"`
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cart := make([]pricing.CartEntry, 0, len(body.Items))
	for _, item := range body.Items {
		names := make([]string, 0, len(item.SelectedIngredients))
		for _, sel := range item.SelectedIngredients {
			names = append(names, sel.Name)
		}
		cart = append(cart, pricing.CartEntry{
			MenuItemID:          item.MenuItemID,
			Quantity:            item.Quantity,
			SelectedIngredients: names,
			Customizations:      item.Customizations,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	priced, err := oc.pricer.Price(ctx, cart)
	if err != nil {
		respondError(c, err)
		return
	}

	info := stores.CheckoutInfo{
		Name:            body.Name,
		PhoneNumber:     body.PhoneNumber,
		DeliveryAddress: body.DeliveryAddress,
		PaymentMethod:   body.PaymentMethod,
	}
	order, err := oc.orders.Create(ctx, priced.Items, priced.Total, info)
	if err != nil {
		respondError(c, err)
		return
	}

	oc.notifier.OrdersChanged(ctx)
	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "data": order})
}

func (oc *OrderController) GetAllOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := oc.orders.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": orders})
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.orders.Get(ctx, objID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": order})
}

type updateOrderBody struct {
	OrderStatus string     `json:"orderStatus" binding:"required"`
	ETA         *time.Time `json:"eta"`
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var body updateOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.orders.UpdateStatus(ctx, objID, stores.StatusPatch{
		OrderStatus: body.OrderStatus,
		ETA:         body.ETA,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	oc.notifier.OrdersChanged(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully", "data": order})
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deleted, err := oc.orders.Delete(ctx, objID)
	if err != nil {
		respondError(c, err)
		return
	}

	oc.notifier.OrdersChanged(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully", "data": deleted})
}
