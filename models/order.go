package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodScan     = "scan"
	PaymentMethodSatispay = "satispay"
	PaymentMethodPaypal   = "paypal"
)

const (
	PaymentStatusPending   = "Pending"
	PaymentStatusCompleted = "Completed"
	PaymentStatusFailed    = "Failed"
)

const (
	OrderStatusPending        = "Pending"
	OrderStatusPreparing      = "Preparing"
	OrderStatusOutForDelivery = "Out for Delivery"
	OrderStatusDelivered      = "Delivered"
)

var PaymentMethods = []string{
	PaymentMethodCash,
	PaymentMethodScan,
	PaymentMethodSatispay,
	PaymentMethodPaypal,
}

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

type SelectedIngredient struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// OrderLineItem is the priced snapshot of one cart entry. Price and
// OriginalPrice are copied from the menu at creation time and never
// re-derived, so deleting the menu item later does not corrupt the order.
type OrderLineItem struct {
	MenuItemID          primitive.ObjectID   `bson:"menuItem" json:"menuItem"`
	Name                string               `bson:"name" json:"name"`
	Price               float64              `bson:"price" json:"price"`
	OriginalPrice       float64              `bson:"originalPrice" json:"originalPrice"`
	Quantity            int                  `bson:"quantity" json:"quantity"`
	SelectedIngredients []SelectedIngredient `bson:"selectedIngredients" json:"selectedIngredients"`
	Customizations      string               `bson:"customizations,omitempty" json:"customizations,omitempty"`
}

type DeliveryAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items           []OrderLineItem    `bson:"items" json:"items"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	PaymentID       string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	ETA             *time.Time         `bson:"eta,omitempty" json:"eta,omitempty"`
	Name            string             `bson:"name" json:"name"`
	PhoneNumber     string             `bson:"phoneNumber" json:"phoneNumber"`
	DeliveryAddress DeliveryAddress    `bson:"deliveryAddress" json:"deliveryAddress"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
