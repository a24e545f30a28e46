package market_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/escrow"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"github.com/ZilDuck/zilliqa-marketplace/internal/registry"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

const (
	custody  = "market"
	admin    = "admin"
	treasury = "treasury"
	creator  = "creator"
	seller   = "seller"
	alice    = "alice"
	bob      = "bob"
	usd      = "0xusd"
	contract = "0xnft"
)

var t0 = time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)

type world struct {
	market   *market.Market
	bank     *ledger.Bank
	tokens   *ledger.Tokens
	registry *registry.MemoryRegistry
	escrow   *escrow.Ledger
	router   *payment.Router
	now      time.Time
	events   []event.Event
}

// newWorld builds a market charging a 10% fee with a 5% collection royalty for creator. seller owns
// tokens 1 and 2, both approved for the market, and every trader holds 1000 native and 1000 usd.
func newWorld(t *testing.T) *world {
	t.Helper()

	w := &world{
		bank:     ledger.NewBank(),
		tokens:   ledger.NewTokens(),
		registry: registry.NewMemoryRegistry(custody),
		now:      t0,
	}
	w.router = payment.NewRouter(w.bank, w.tokens, custody)
	w.escrow = escrow.NewLedger(w.router)

	m, err := market.NewMarket(
		market.Config{
			Admin:        admin,
			FeeRate:      100,
			FeeRecipient: treasury,
			Tokens:       []entity.SupportedToken{{Method: entity.Token(usd), Symbol: "USD", Decimals: 6}},
		},
		w.registry,
		w.router,
		w.escrow,
		func() time.Time { return w.now },
		nil,
		w.bank, w.tokens, w.registry,
	)
	assert.NoError(t, err)
	w.market = m
	w.market.Events().AddEventListener(event.AllEvents, func(e event.Event) {
		w.events = append(w.events, e)
	})

	w.registry.SetRoyalty(contract, entity.Royalty{Receiver: creator, RateBps: 500})
	for _, id := range []uint64{1, 2} {
		assert.NoError(t, w.registry.Mint(asset(id), seller))
	}
	w.registry.SetApprovalForAll(seller, custody, true)

	for _, account := range []string{seller, alice, bob} {
		w.bank.Mint(account, 1000)
		w.tokens.Mint(usd, account, 1000)
	}

	return w
}

func asset(id uint64) entity.AssetId {
	return entity.NewAssetId(contract, id)
}

func (w *world) advance(d time.Duration) {
	w.now = w.now.Add(d)
}

func (w *world) owner(t *testing.T, id uint64) string {
	t.Helper()
	owner, err := w.registry.OwnerOf(asset(id))
	assert.NoError(t, err)
	return owner
}

func (w *world) eventTypes() []event.Type {
	types := make([]event.Type, 0, len(w.events))
	for _, e := range w.events {
		types = append(types, e.Type)
	}
	return types
}

func native(sender string, value uint64) market.Call {
	return market.Call{Sender: sender, Value: value}
}

func from(sender string) market.Call {
	return market.Call{Sender: sender}
}

func TestNewMarket_InvalidFeeRate(t *testing.T) {
	_, err := market.NewMarket(market.Config{Admin: admin, FeeRate: 1001}, nil, nil, nil, nil, nil)
	check.True(t, errors.Is(err, market.ErrInvalidFeeRate))
}

func TestNewMarket_DefaultsFeeRecipientToAdmin(t *testing.T) {
	bank := ledger.NewBank()
	router := payment.NewRouter(bank, ledger.NewTokens(), custody)
	m, err := market.NewMarket(market.Config{Admin: admin, FeeRate: 25}, registry.NewMemoryRegistry(custody), router, escrow.NewLedger(router), nil, nil)
	assert.NoError(t, err)

	check.Equal(t, admin, m.FeeRecipient())
	check.Equal(t, uint64(25), m.FeeRate())

	tokens := m.GetSupportedTokens()
	check.Equal(t, 1, len(tokens))
	check.Equal(t, entity.Native, tokens[0].Method)
}

func TestMarket_AdminOperations(t *testing.T) {
	w := newWorld(t)

	check.True(t, errors.Is(w.market.SetFeeRate(from(alice), 50), market.ErrOnlyAdmin))
	check.True(t, errors.Is(w.market.SetFeeRate(from(admin), 1001), market.ErrInvalidFeeRate))
	check.Equal(t, uint64(100), w.market.FeeRate())

	assert.NoError(t, w.market.SetFeeRate(from(admin), 50))
	check.Equal(t, uint64(50), w.market.FeeRate())

	check.True(t, errors.Is(w.market.SetFeeRecipient(from(bob), bob), market.ErrOnlyAdmin))
	assert.NoError(t, w.market.SetFeeRecipient(from(admin), "vault"))
	check.Equal(t, "vault", w.market.FeeRecipient())

	dai := entity.SupportedToken{Method: entity.Token("0xdai"), Symbol: "DAI", Decimals: 18}
	check.True(t, errors.Is(w.market.AddSupportedToken(from(alice), dai), market.ErrOnlyAdmin))
	assert.NoError(t, w.market.AddSupportedToken(from(admin), dai))
	check.Equal(t, 3, len(w.market.GetSupportedTokens()))

	_, ok := w.market.GetSupportedToken(entity.Token("0xdai"))
	check.True(t, ok)

	assert.NoError(t, w.market.RemoveSupportedToken(from(admin), entity.Token("0xdai")))
	_, ok = w.market.GetSupportedToken(entity.Token("0xdai"))
	check.False(t, ok)

	err := w.market.RemoveSupportedToken(from(admin), entity.Token("0xdai"))
	check.True(t, errors.Is(err, market.ErrUnsupportedToken))
}

func TestMarket_AdminOperationRejectsAttachedValue(t *testing.T) {
	w := newWorld(t)

	err := w.market.SetFeeRate(native(admin, 5), 50)
	check.True(t, errors.Is(err, market.ErrAmountMismatch))
	check.Equal(t, uint64(100), w.market.FeeRate())
}

func TestMarket_ErrorsCarryKind(t *testing.T) {
	w := newWorld(t)

	_, err := w.market.BuyItem(native(alice, 10), 42)

	var merr *market.Error
	check.True(t, errors.As(err, &merr))
	check.Equal(t, "buyItem", merr.Op)
	check.Equal(t, market.NotFound, merr.Kind)
	check.Equal(t, market.NotFound, market.KindOf(err))
	check.True(t, errors.Is(err, market.ErrListingNotFound))

	check.Equal(t, market.Internal, market.KindOf(errors.New("boom")))
	check.Equal(t, market.Funds, market.KindOf(market.ErrNoEscrowBalance))
}

func TestMarket_EventsCarryReceiptId(t *testing.T) {
	w := newWorld(t)

	receipt, err := w.market.ListItem(from(seller), asset(1), entity.Native, 10)
	assert.NoError(t, err)

	check.Equal(t, 1, len(w.events))
	check.Equal(t, receipt.Id, w.events[0].ReceiptId)
	check.Equal(t, t0, w.events[0].Time)
	check.Equal(t, "listing-0", w.events[0].Ref)
}

func TestMarket_FailedOperationEmitsNothing(t *testing.T) {
	w := newWorld(t)

	_, err := w.market.ListItem(from(alice), asset(1), entity.Native, 10)
	check.True(t, errors.Is(err, market.ErrOnlyTokenOwner))
	check.Equal(t, 0, len(w.events))
	check.Equal(t, 0, len(w.market.GetListings()))
}

type failingRegistry struct {
	*registry.MemoryRegistry
}

func (failingRegistry) Transfer(entity.AssetId, string, string) error {
	panic("registry unavailable")
}

func TestMarket_PanickingCollaboratorReleasesLock(t *testing.T) {
	w := newWorld(t)
	m, err := market.NewMarket(
		market.Config{Admin: admin, FeeRate: 100},
		failingRegistry{w.registry},
		w.router,
		escrow.NewLedger(w.router),
		func() time.Time { return w.now },
		nil,
		w.bank, w.tokens, w.registry,
	)
	assert.NoError(t, err)

	func() {
		defer func() {
			check.Equal(t, interface{}("registry unavailable"), recover())
		}()

		_, _ = m.StartAuction(from(seller), market.AuctionParams{
			Asset:          asset(1),
			PaymentMethod:  entity.Native,
			DirectBuyPrice: 100,
			StartPrice:     10,
			StartTime:      t0,
			EndTime:        t0.Add(time.Hour),
		})
	}()

	check.Equal(t, 0, len(m.GetAuctions()))
	check.Equal(t, seller, w.owner(t, 1))

	_, err = m.ListItem(from(seller), asset(1), entity.Native, 10)
	assert.NoError(t, err)
}

func TestMarket_EventsFollowCommitOrder(t *testing.T) {
	w := newWorld(t)

	var (
		mu      sync.Mutex
		order   []event.Type
		started = make(chan struct{})
	)
	w.market.Events().AddEventListener(event.AllEvents, func(e event.Event) {
		if e.Type == event.AuctionStartedEvent {
			close(started)
			time.Sleep(50 * time.Millisecond)
		}
		mu.Lock()
		order = append(order, e.Type)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.market.StartAuction(from(seller), market.AuctionParams{
			Asset:          asset(1),
			PaymentMethod:  entity.Native,
			DirectBuyPrice: 100,
			StartPrice:     10,
			StartTime:      t0,
			EndTime:        t0.Add(time.Hour),
		})
	}()

	<-started
	auctions := w.market.GetAuctions()
	assert.Equal(t, 1, len(auctions))

	_, err := w.market.Bid(native(alice, 15), auctions[0].Id, 15)
	assert.NoError(t, err)
	<-done

	mu.Lock()
	defer mu.Unlock()
	check.Equal(t, []event.Type{event.AuctionStartedEvent, event.BidPlacedEvent}, order)
}
