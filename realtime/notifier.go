package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"azzipizza/stores"
)

// Notifier is the capability order mutations invoke after committing.
type Notifier interface {
	OrdersChanged(ctx context.Context)
}

type Broadcaster interface {
	Publish(payload []byte)
}

type OrderLister interface {
	List(ctx context.Context) ([]stores.ResolvedOrder, error)
}

type event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// OrderNotifier re-fetches the resolved order list and publishes it as a
// latestOrders frame. Fetch or encode failures are logged and swallowed;
// they never fail the mutation that triggered the broadcast.
type OrderNotifier struct {
	orders OrderLister
	hub    Broadcaster
	log    *slog.Logger
}

func NewOrderNotifier(orders OrderLister, hub Broadcaster, log *slog.Logger) *OrderNotifier {
	return &OrderNotifier{orders: orders, hub: hub, log: log}
}

func (n *OrderNotifier) OrdersChanged(ctx context.Context) {
	payload, err := n.Snapshot(ctx)
	if err != nil {
		n.log.Warn("order broadcast skipped", "error", err)
		return
	}
	n.hub.Publish(payload)
}

// Snapshot encodes the current resolved order list as a latestOrders frame.
func (n *OrderNotifier) Snapshot(ctx context.Context) ([]byte, error) {
	orders, err := n.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(event{Event: "latestOrders", Data: orders})
}
