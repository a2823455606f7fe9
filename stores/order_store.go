package stores

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"azzipizza/apperr"
	"azzipizza/models"
)

type CheckoutInfo struct {
	Name            string
	PhoneNumber     string
	DeliveryAddress models.DeliveryAddress
	PaymentMethod   string
}

// StatusPatch updates the kitchen-facing order state. ETA is only written
// when supplied; a previously set eta is never cleared implicitly.
type StatusPatch struct {
	OrderStatus string
	ETA         *time.Time
}

// MenuRef is the display slice of a menu item attached to a resolved order
// line, mirroring what the dashboard needs (name, price, category).
type MenuRef struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Price    float64            `json:"price"`
	Category string             `json:"category"`
}

type ResolvedLineItem struct {
	MenuItem            *MenuRef                    `json:"menuItem"`
	Name                string                      `json:"name"`
	Price               float64                     `json:"price"`
	OriginalPrice       float64                     `json:"originalPrice"`
	Quantity            int                         `json:"quantity"`
	SelectedIngredients []models.SelectedIngredient `json:"selectedIngredients"`
	Customizations      string                      `json:"customizations,omitempty"`
}

type ResolvedOrder struct {
	ID              primitive.ObjectID     `json:"id"`
	Items           []ResolvedLineItem     `json:"items"`
	TotalPrice      float64                `json:"totalPrice"`
	PaymentID       string                 `json:"paymentId,omitempty"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentStatus   string                 `json:"paymentStatus"`
	OrderStatus     string                 `json:"orderStatus"`
	ETA             *time.Time             `json:"eta,omitempty"`
	Name            string                 `json:"name"`
	PhoneNumber     string                 `json:"phoneNumber"`
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type OrderStore interface {
	Create(ctx context.Context, items []models.OrderLineItem, total float64, info CheckoutInfo) (*models.Order, error)
	List(ctx context.Context) ([]ResolvedOrder, error)
	Get(ctx context.Context, id primitive.ObjectID) (*ResolvedOrder, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, patch StatusPatch) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	AttachPayment(ctx context.Context, id primitive.ObjectID, providerID string) error
	SettlePayment(ctx context.Context, providerID string) (*models.Order, bool, error)
}

type MongoOrderStore struct {
	coll *mongo.Collection
	menu MenuStore
}

func NewMongoOrderStore(coll *mongo.Collection, menu MenuStore) *MongoOrderStore {
	return &MongoOrderStore{coll: coll, menu: menu}
}

// ValidateCheckoutInfo checks the delivery and payment fields required to
// accept an order.
func ValidateCheckoutInfo(info CheckoutInfo) error {
	if info.DeliveryAddress.Street == "" {
		return apperr.Validation("deliveryAddress.street", "street is required")
	}
	if info.DeliveryAddress.City == "" {
		return apperr.Validation("deliveryAddress.city", "city is required")
	}
	if info.DeliveryAddress.ZipCode == "" {
		return apperr.Validation("deliveryAddress.zipCode", "zip code is required")
	}
	if info.PhoneNumber == "" {
		return apperr.Validation("phoneNumber", "phone number is required")
	}
	if !models.ValidPaymentMethod(info.PaymentMethod) {
		return apperr.Validationf("paymentMethod", "unknown payment method %q", info.PaymentMethod)
	}
	return nil
}

// InitialPaymentStatus settles in-person scan payments immediately; every
// other method stays pending until settled by a callback or an operator.
func InitialPaymentStatus(method string) string {
	if method == models.PaymentMethodScan {
		return models.PaymentStatusCompleted
	}
	return models.PaymentStatusPending
}

func (s *MongoOrderStore) Create(ctx context.Context, items []models.OrderLineItem, total float64, info CheckoutInfo) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("items", "at least one item is required")
	}
	if err := ValidateCheckoutInfo(info); err != nil {
		return nil, err
	}

	now := time.Now()
	order := models.Order{
		ID:              primitive.NewObjectID(),
		Items:           items,
		TotalPrice:      total,
		PaymentMethod:   info.PaymentMethod,
		PaymentStatus:   InitialPaymentStatus(info.PaymentMethod),
		OrderStatus:     models.OrderStatusPending,
		Name:            info.Name,
		PhoneNumber:     info.PhoneNumber,
		DeliveryAddress: info.DeliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.coll.InsertOne(ctx, order); err != nil {
		return nil, apperr.Persistence("order create", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) List(ctx context.Context) ([]ResolvedOrder, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Persistence("order list", err)
	}

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperr.Persistence("order list", err)
	}
	return s.resolve(ctx, orders)
}

func (s *MongoOrderStore) Get(ctx context.Context, id primitive.ObjectID) (*ResolvedOrder, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("order", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("order get", err)
	}

	resolved, err := s.resolve(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &resolved[0], nil
}

// resolve attaches menu display fields to every line item with one $in
// lookup. Resolution is best-effort: a line whose menu item was deleted
// keeps menuItem null instead of failing the whole read.
func (s *MongoOrderStore) resolve(ctx context.Context, orders []models.Order) ([]ResolvedOrder, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, order := range orders {
		for _, item := range order.Items {
			idSet[item.MenuItemID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	menuByID, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedOrder, 0, len(orders))
	for _, order := range orders {
		resolved = append(resolved, ResolveOrder(order, menuByID))
	}
	return resolved, nil
}

// ResolveOrder maps one stored order onto its resolved form using an
// already-fetched menu snapshot.
func ResolveOrder(order models.Order, menuByID map[primitive.ObjectID]models.MenuItem) ResolvedOrder {
	items := make([]ResolvedLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		var ref *MenuRef
		if menuItem, ok := menuByID[item.MenuItemID]; ok {
			ref = &MenuRef{
				ID:       menuItem.ID,
				Name:     menuItem.Name,
				Price:    menuItem.Price,
				Category: menuItem.Category,
			}
		}
		items = append(items, ResolvedLineItem{
			MenuItem:            ref,
			Name:                item.Name,
			Price:               item.Price,
			OriginalPrice:       item.OriginalPrice,
			Quantity:            item.Quantity,
			SelectedIngredients: item.SelectedIngredients,
			Customizations:      item.Customizations,
		})
	}

	return ResolvedOrder{
		ID:              order.ID,
		Items:           items,
		TotalPrice:      order.TotalPrice,
		PaymentID:       order.PaymentID,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		OrderStatus:     order.OrderStatus,
		ETA:             order.ETA,
		Name:            order.Name,
		PhoneNumber:     order.PhoneNumber,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, patch StatusPatch) (*models.Order, error) {
	if !models.ValidOrderStatus(patch.OrderStatus) {
		return nil, apperr.Validationf("orderStatus", "unknown order status %q", patch.OrderStatus)
	}

	update := bson.M{
		"orderStatus": patch.OrderStatus,
		"updatedAt":   time.Now(),
	}
	if patch.ETA != nil {
		update["eta"] = *patch.ETA
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Order
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("order", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("order update", err)
	}
	return &updated, nil
}

func (s *MongoOrderStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var deleted models.Order
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("order", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("order delete", err)
	}
	return &deleted, nil
}

func (s *MongoOrderStore) AttachPayment(ctx context.Context, id primitive.ObjectID, providerID string) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentId": providerID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return apperr.Persistence("order attach payment", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("order", id.Hex())
	}
	return nil
}

// SettlePayment flips an order to paid exactly once. The filter on
// paymentStatus makes duplicate provider callbacks a no-op; the second
// delivery reads the already-settled order back and reports changed=false.
func (s *MongoOrderStore) SettlePayment(ctx context.Context, providerID string) (*models.Order, bool, error) {
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentStatusCompleted,
		"orderStatus":   models.OrderStatusPreparing,
		"updatedAt":     time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var settled models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"paymentId": providerID, "paymentStatus": bson.M{"$ne": models.PaymentStatusCompleted}},
		update, opts).Decode(&settled)
	if err == nil {
		return &settled, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, apperr.Persistence("order settle", err)
	}

	// Either the payment id is unknown or the order is already settled.
	var existing models.Order
	err = s.coll.FindOne(ctx, bson.M{"paymentId": providerID}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, apperr.NotFound("order with payment", providerID)
	}
	if err != nil {
		return nil, false, apperr.Persistence("order settle", err)
	}
	return &existing, false, nil
}
