package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"net/http"
	"sync"
)

var ErrBadStatus = errors.New("bad status code")

const queueSize = 256

type Service interface {
	NotifyFromEvent(e event.Event)
	Notify(e event.Event) error
	Close()
}

type service struct {
	url    string
	client *retryablehttp.Client

	mu     sync.Mutex
	closed bool
	queue  chan event.Event
	done   chan struct{}
}

// NewService posts settlement events (sales, direct buys, ended auctions and accepted offers) to url.
// Deliveries run on a single worker in event order so a slow endpoint never blocks the market.
func NewService(url string, client *retryablehttp.Client, events *event.Manager) Service {
	s := &service{
		url:    url,
		client: client,
		queue:  make(chan event.Event, queueSize),
		done:   make(chan struct{}),
	}
	go s.work()

	for _, t := range []event.Type{
		event.ItemSoldEvent,
		event.AuctionDirectBuyEvent,
		event.AuctionEndedEvent,
		event.OfferAcceptedEvent,
	} {
		events.AddEventListener(t, s.NotifyFromEvent)
	}

	return s
}

func NewClient(retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.Logger = nil

	return client
}

func (s *service) NotifyFromEvent(e event.Event) {
	if s.url == "" {
		zap.L().Debug("Webhook: Notifications disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		zap.L().With(zap.String("receiptId", e.ReceiptId)).Warn("Webhook: Service closed, notification dropped")
		return
	}

	select {
	case s.queue <- e:
	default:
		zap.L().With(zap.String("receiptId", e.ReceiptId)).Error("Webhook: Queue full, notification dropped")
	}
}

// Close stops accepting notifications and waits for the queued ones to be delivered.
func (s *service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
}

func (s *service) work() {
	defer close(s.done)

	for e := range s.queue {
		_ = s.Notify(e)
	}
}

func (s *service) Notify(e event.Event) error {
	zap.L().With(
		zap.String("type", string(e.Type)),
		zap.String("receiptId", e.ReceiptId),
	).Info("Webhook notification request")

	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Marketplace-Event", string(e.Type))

	resp, err := s.client.Do(req)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("url", s.url),
			zap.String("receiptId", e.ReceiptId),
		).Error("Failed to deliver webhook")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zap.L().With(
			zap.Int("status", resp.StatusCode),
			zap.String("url", s.url),
			zap.String("receiptId", e.ReceiptId),
		).Error("Failed to deliver webhook")
		return fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	zap.L().With(zap.String("receiptId", e.ReceiptId)).Info("Webhook notification success")

	return nil
}
