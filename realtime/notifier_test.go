package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azzipizza/stores"
)

type stubLister struct {
	orders []stores.ResolvedOrder
	err    error
}

func (s *stubLister) List(context.Context) ([]stores.ResolvedOrder, error) {
	return s.orders, s.err
}

type captureBroadcaster struct {
	payloads [][]byte
}

func (c *captureBroadcaster) Publish(payload []byte) {
	c.payloads = append(c.payloads, payload)
}

func TestOrdersChangedPublishesLatestOrders(t *testing.T) {
	lister := &stubLister{orders: []stores.ResolvedOrder{{TotalPrice: 19.5}}}
	hub := &captureBroadcaster{}
	notifier := NewOrderNotifier(lister, hub, slog.Default())

	notifier.OrdersChanged(context.Background())

	require.Len(t, hub.payloads, 1)
	var frame struct {
		Event string            `json:"event"`
		Data  []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(hub.payloads[0], &frame))
	assert.Equal(t, "latestOrders", frame.Event)
	assert.Len(t, frame.Data, 1)
}

func TestOrdersChangedSwallowsFetchFailure(t *testing.T) {
	lister := &stubLister{err: errors.New("mongo down")}
	hub := &captureBroadcaster{}
	notifier := NewOrderNotifier(lister, hub, slog.Default())

	// Must not panic or publish; the triggering mutation already committed.
	notifier.OrdersChanged(context.Background())
	assert.Empty(t, hub.payloads)
}
