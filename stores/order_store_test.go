package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/models"
)

func validInfo() CheckoutInfo {
	return CheckoutInfo{
		Name:        "Mario",
		PhoneNumber: "3331234567",
		DeliveryAddress: models.DeliveryAddress{
			Street:  "Via Roma 1",
			City:    "Milano",
			ZipCode: "20121",
		},
		PaymentMethod: models.PaymentMethodCash,
	}
}

func TestValidateCheckoutInfo(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CheckoutInfo)
		wantErr string
	}{
		{name: "valid", mutate: func(i *CheckoutInfo) {}},
		{
			name:    "missing street",
			mutate:  func(i *CheckoutInfo) { i.DeliveryAddress.Street = "" },
			wantErr: "street is required",
		},
		{
			name:    "missing city",
			mutate:  func(i *CheckoutInfo) { i.DeliveryAddress.City = "" },
			wantErr: "city is required",
		},
		{
			name:    "missing zip code",
			mutate:  func(i *CheckoutInfo) { i.DeliveryAddress.ZipCode = "" },
			wantErr: "zip code is required",
		},
		{
			name:    "missing phone number",
			mutate:  func(i *CheckoutInfo) { i.PhoneNumber = "" },
			wantErr: "phone number is required",
		},
		{
			name:    "unknown payment method",
			mutate:  func(i *CheckoutInfo) { i.PaymentMethod = "bitcoin" },
			wantErr: "unknown payment method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validInfo()
			tt.mutate(&info)
			err := ValidateCheckoutInfo(info)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitialPaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentStatusCompleted, InitialPaymentStatus(models.PaymentMethodScan))
	assert.Equal(t, models.PaymentStatusPending, InitialPaymentStatus(models.PaymentMethodCash))
	assert.Equal(t, models.PaymentStatusPending, InitialPaymentStatus(models.PaymentMethodSatispay))
	assert.Equal(t, models.PaymentStatusPending, InitialPaymentStatus(models.PaymentMethodPaypal))
}

func TestResolveOrderToleratesDanglingRef(t *testing.T) {
	existing := models.MenuItem{
		ID:       primitive.NewObjectID(),
		Name:     "margherita",
		Price:    10,
		Category: models.DefaultCategory,
	}
	deleted := primitive.NewObjectID()

	eta := time.Now().Add(30 * time.Minute)
	order := models.Order{
		ID: primitive.NewObjectID(),
		Items: []models.OrderLineItem{
			{MenuItemID: existing.ID, Name: "margherita", Price: 10, Quantity: 1},
			{MenuItemID: deleted, Name: "capricciosa", Price: 12, Quantity: 2},
		},
		TotalPrice:  34,
		OrderStatus: models.OrderStatusPending,
		ETA:         &eta,
	}

	resolved := ResolveOrder(order, map[primitive.ObjectID]models.MenuItem{existing.ID: existing})

	require.Len(t, resolved.Items, 2)
	require.NotNil(t, resolved.Items[0].MenuItem)
	assert.Equal(t, "margherita", resolved.Items[0].MenuItem.Name)
	assert.Equal(t, models.DefaultCategory, resolved.Items[0].MenuItem.Category)

	// The deleted menu item renders as null; the snapshot on the line keeps
	// the order readable.
	assert.Nil(t, resolved.Items[1].MenuItem)
	assert.Equal(t, "capricciosa", resolved.Items[1].Name)
	assert.Equal(t, 12.0, resolved.Items[1].Price)

	assert.Equal(t, order.TotalPrice, resolved.TotalPrice)
	assert.Equal(t, &eta, resolved.ETA)
}
