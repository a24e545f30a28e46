package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

type recorder struct {
	items  []Item
	bodies [][]byte
	err    error
}

func (r *recorder) SendMessage(item Item, body []byte) error {
	r.items = append(r.items, item)
	r.bodies = append(r.bodies, body)
	return r.err
}

func (r *recorder) ConsumeMessages(context.Context, Item, func(string)) error {
	return nil
}

func (r *recorder) Close() {}

func TestEventItem(t *testing.T) {
	check.Equal(t, Item("ItemSold"), EventItem(event.ItemSoldEvent))
	check.Equal(t, Item("BidPlaced"), EventItem(event.BidPlacedEvent))
}

func TestMessenger_Subject(t *testing.T) {
	m := NewMessenger("", "marketplace.events")
	check.Equal(t, "marketplace.events.OfferMade", m.subject(EventItem(event.OfferMadeEvent)))
}

func TestMessenger_NotConnected(t *testing.T) {
	err := NewMessenger("", "marketplace.events").SendMessage("ItemSold", []byte("{}"))
	check.True(t, errors.Is(err, ErrNotConnected))
}

func TestPublishEvents(t *testing.T) {
	events := event.NewManager()
	r := &recorder{}
	PublishEvents(events, r)

	events.EmitEvent(event.Event{Type: event.ItemSoldEvent, ReceiptId: "r1", Asset: entity.NewAssetId("0xnft", 1), Amount: 10})

	check.Equal(t, []Item{"ItemSold"}, r.items)

	var published event.Event
	assert.NoError(t, json.Unmarshal(r.bodies[0], &published))
	check.Equal(t, "r1", published.ReceiptId)
	check.Equal(t, uint64(10), published.Amount)
}

func TestPublishEvents_IgnoresDeliveryErrors(t *testing.T) {
	events := event.NewManager()
	r := &recorder{err: errors.New("down")}
	PublishEvents(events, r)

	events.EmitEvent(event.Event{Type: event.OfferMadeEvent})
	events.EmitEvent(event.Event{Type: event.OfferCanceledEvent})

	check.Equal(t, 2, len(r.items))
}
