package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"strings"
)

var ErrNotConnected = errors.New("messenger not connected")

type MessageService interface {
	SendMessage(item Item, body []byte) error
	ConsumeMessages(ctx context.Context, item Item, callback func(msg string)) error
	Close()
}

type Messenger struct {
	natsUrl string
	prefix  string
	conn    *nats.Conn
}

// Item is the last token of a subject, one per marketplace event type.
type Item string

func EventItem(t event.Type) Item {
	return Item(strings.TrimSuffix(string(t), "Event"))
}

// AllItems matches every marketplace subject.
var AllItems Item = "*"

func (m *Messenger) subject(item Item) string {
	return fmt.Sprintf("%s.%s", m.prefix, item)
}

func NewMessenger(natsUrl, prefix string) *Messenger {
	return &Messenger{natsUrl: natsUrl, prefix: prefix}
}

func (m *Messenger) SendMessage(item Item, body []byte) error {
	conn, err := m.openConnection()
	if err != nil {
		return err
	}

	if err := conn.Publish(m.subject(item), body); err != nil {
		zap.L().With(zap.Error(err), zap.String("subject", m.subject(item))).Error("[Queue] Failed to publish")
		return err
	}

	zap.L().With(zap.String("subject", m.subject(item))).Debug("[Queue] Published message")

	return nil
}

func (m *Messenger) ConsumeMessages(ctx context.Context, item Item, callback func(msg string)) error {
	conn, err := m.openConnection()
	if err != nil {
		return err
	}

	sub, err := conn.Subscribe(m.subject(item), func(msg *nats.Msg) {
		zap.L().With(zap.String("subject", msg.Subject)).Debug("[Queue] Received message")
		callback(string(msg.Data))
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("subject", m.subject(item))).Error("[Queue] Failed to subscribe")
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	zap.L().With(zap.String("subject", m.subject(item))).Info("[Queue] Waiting for messages")
	<-ctx.Done()

	return nil
}

func (m *Messenger) Close() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

func (m *Messenger) openConnection() (*nats.Conn, error) {
	if m.conn != nil && m.conn.IsConnected() {
		return m.conn, nil
	}
	if m.natsUrl == "" {
		return nil, ErrNotConnected
	}

	conn, err := nats.Connect(m.natsUrl, nats.Name("marketplace"))
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to connect to NATS")
		return nil, err
	}

	m.conn = conn

	return m.conn, nil
}

// PublishEvents forwards every committed marketplace event to the message service as JSON.
// Delivery is best effort and never affects the committed operation.
func PublishEvents(events *event.Manager, service MessageService) {
	events.AddEventListener(event.AllEvents, func(e event.Event) {
		body, err := json.Marshal(e)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("type", string(e.Type))).Error("[Queue] Failed to encode event")
			return
		}

		if err := service.SendMessage(EventItem(e.Type), body); err != nil {
			zap.L().With(zap.Error(err), zap.String("type", string(e.Type))).Warn("[Queue] Event not published")
		}
	})
}
