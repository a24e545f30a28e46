package market

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/escrow"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/fee"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"go.uber.org/zap"
	"sort"
	"sync"
	"time"
)

// AssetRegistry tracks asset ownership and transfer approval. Transfer is performed by the marketplace
// custody account and fails when that account is not approved.
type AssetRegistry interface {
	OwnerOf(asset entity.AssetId) (string, error)
	IsApprovedForTransfer(asset entity.AssetId, spender string) bool
	Transfer(asset entity.AssetId, from, to string) error
	RoyaltyInfo(asset entity.AssetId) (*entity.Royalty, error)
}

type Clock func() time.Time

// Call identifies the caller of an operation and the native value attached to it.
type Call struct {
	Sender string
	Value  uint64
}

type Config struct {
	Admin        string
	FeeRate      uint64
	FeeRecipient string
	Tokens       []entity.SupportedToken
}

// Market is the settlement engine. Operations are serialised and each one either commits fully or
// leaves every participant untouched.
type Market struct {
	mu           sync.Mutex
	emitMu       sync.Mutex
	admin        string
	feeRate      uint64
	feeRecipient string
	supported    map[entity.PaymentMethod]entity.SupportedToken

	assets  AssetRegistry
	router  *payment.Router
	escrow  *escrow.Ledger
	store   *store
	clock   Clock
	events  *event.Manager
	journal journal.Group
}

// NewMarket wires the engine. collaborators are the journaled external ledgers and registries that must be
// rolled back together with the engine's own state when an operation fails.
func NewMarket(
	cfg Config,
	assets AssetRegistry,
	router *payment.Router,
	ledger *escrow.Ledger,
	clock Clock,
	events *event.Manager,
	collaborators ...journal.Journaled,
) (*Market, error) {
	if cfg.FeeRate > fee.FeeRateDenominator {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFeeRate, cfg.FeeRate)
	}
	if clock == nil {
		clock = time.Now
	}
	if events == nil {
		events = event.NewManager()
	}

	m := &Market{
		admin:        cfg.Admin,
		feeRate:      cfg.FeeRate,
		feeRecipient: cfg.FeeRecipient,
		supported:    map[entity.PaymentMethod]entity.SupportedToken{entity.Native: entity.NativeToken()},
		assets:       assets,
		router:       router,
		escrow:       ledger,
		store:        newStore(),
		clock:        clock,
		events:       events,
	}
	if m.feeRecipient == "" {
		m.feeRecipient = cfg.Admin
	}
	for _, token := range cfg.Tokens {
		m.supported[token.Method] = token
	}

	m.journal = append(journal.Group{m.store, m.escrow}, collaborators...)

	return m, nil
}

func (m *Market) Events() *event.Manager {
	return m.events
}

func (m *Market) Custody() string {
	return m.router.Custody()
}

// Provision applies fn to the collaborators outside of any operation, serialised with operations and
// reverted as a whole if fn fails. No receipt or events are produced.
func (m *Market) Provision(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.journal.Atomic(fn)
}

// op is the per-operation context: the caller, the time the operation observes and what it produced.
type op struct {
	name      string
	call      Call
	now       time.Time
	valueUsed bool
	receipt   entity.Receipt
	events    []event.Event
}

func (o *op) emit(e event.Event) {
	e.Time = o.now
	e.ReceiptId = o.receipt.Id
	o.events = append(o.events, e)
}

// exec runs fn under the engine lock as one atomic unit. Events are emitted after the engine lock is released
// but under the emit lock, which is taken before the engine lock is dropped so listeners see commit order.
func (m *Market) exec(name string, call Call, fn func(o *op) error) (*entity.Receipt, error) {
	o := &op{
		name:    name,
		call:    call,
		receipt: entity.Receipt{Id: entity.NewReceiptId(), Operation: name},
	}

	err := m.commit(o, fn)
	if err != nil {
		zap.L().With(
			zap.String("op", name),
			zap.String("sender", call.Sender),
			zap.Error(err),
		).Info("Market: Operation rejected")
		return nil, newError(name, err)
	}

	zap.L().With(
		zap.String("op", name),
		zap.String("sender", call.Sender),
		zap.String("ref", o.receipt.Ref),
		zap.String("receipt", o.receipt.Id),
	).Info("Market: Operation committed")

	m.publish(o.events)

	return &o.receipt, nil
}

// commit returns holding the emit lock when fn succeeded.
func (m *Market) commit(o *op, fn func(o *op) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.now = m.clock()
	err := m.journal.Atomic(func() error {
		if err := fn(o); err != nil {
			return err
		}
		if o.call.Value != 0 && !o.valueUsed {
			return fmt.Errorf("%w: native value attached to %s", ErrAmountMismatch, o.name)
		}
		return nil
	})
	if err == nil {
		m.emitMu.Lock()
	}

	return err
}

func (m *Market) publish(events []event.Event) {
	defer m.emitMu.Unlock()

	for _, e := range events {
		m.events.EmitEvent(e)
	}
}

// collect pulls amount from payer, consuming the call's attached value for native payments.
func (m *Market) collect(o *op, payer string, method entity.PaymentMethod, amount uint64) error {
	if method.IsNative() {
		o.valueUsed = true
	}
	return m.router.Collect(payer, method, amount, o.call.Value)
}

// deposit is collect for auction bids, recorded in the escrow ledger.
func (m *Market) deposit(o *op, auction entity.Auction, amount uint64) (uint64, error) {
	if auction.PaymentMethod.IsNative() {
		o.valueUsed = true
	}
	return m.escrow.Deposit(auction.Id, o.call.Sender, auction.PaymentMethod, amount, o.call.Value)
}

// settle splits price, already held in custody, between the platform, the royalty receiver and the seller.
func (m *Market) settle(o *op, asset entity.AssetId, method entity.PaymentMethod, price uint64, seller, buyer string) error {
	royalty, err := m.assets.RoyaltyInfo(asset)
	if err != nil {
		return fmt.Errorf("royalty info for %s: %w", asset, err)
	}

	split := fee.Calculate(price, m.feeRate, royalty, seller)
	if err := m.router.Distribute(method, split, m.feeRecipient, seller); err != nil {
		return err
	}

	o.receipt.Settlement = &entity.Settlement{
		Asset:           asset,
		PaymentMethod:   method,
		Buyer:           buyer,
		Seller:          seller,
		Price:           split.Price,
		Fee:             split.Fee,
		FeeRecipient:    m.feeRecipient,
		Royalty:         split.Royalty,
		RoyaltyReceiver: split.RoyaltyReceiver,
		SellerAmount:    split.Seller,
	}

	return nil
}

func (m *Market) moveAsset(asset entity.AssetId, from, to string) error {
	if err := m.assets.Transfer(asset, from, to); err != nil {
		return fmt.Errorf("%w: %v", ErrItemNotApproved, err)
	}
	return nil
}

func (m *Market) ownerOf(asset entity.AssetId) (string, error) {
	owner, err := m.assets.OwnerOf(asset)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	return owner, nil
}

// checkListable applies the checks shared by listItem and startAuction.
func (m *Market) checkListable(o *op, asset entity.AssetId, method entity.PaymentMethod) error {
	owner, err := m.ownerOf(asset)
	if err != nil {
		return err
	}
	if owner != o.call.Sender {
		return ErrOnlyTokenOwner
	}
	if !m.assets.IsApprovedForTransfer(asset, m.Custody()) {
		return ErrItemNotApproved
	}
	if !m.isSupported(method) {
		return fmt.Errorf("%w: %s", ErrUnsupportedToken, method)
	}
	if ref, locked := m.store.lockedBy(asset); locked {
		return fmt.Errorf("%w: %s in %s", ErrAssetAlreadyListed, asset, ref)
	}

	return nil
}

func (m *Market) setSupported(method entity.PaymentMethod, token *entity.SupportedToken) {
	prev, existed := m.supported[method]
	m.store.journal.Record(func() {
		if existed {
			m.supported[method] = prev
		} else {
			delete(m.supported, method)
		}
	})

	if token == nil {
		delete(m.supported, method)
		return
	}
	m.supported[method] = *token
}

func (m *Market) isSupported(method entity.PaymentMethod) bool {
	_, ok := m.supported[method]
	return ok
}

// Administration

func (m *Market) AddSupportedToken(call Call, token entity.SupportedToken) error {
	_, err := m.exec("addSupportedToken", call, func(o *op) error {
		if o.call.Sender != m.admin {
			return ErrOnlyAdmin
		}
		if !token.Method.IsNative() && token.Method.Token == "" {
			return fmt.Errorf("%w: empty token contract", ErrUnsupportedToken)
		}
		m.setSupported(token.Method, &token)
		return nil
	})
	return err
}

func (m *Market) RemoveSupportedToken(call Call, method entity.PaymentMethod) error {
	_, err := m.exec("removeSupportedToken", call, func(o *op) error {
		if o.call.Sender != m.admin {
			return ErrOnlyAdmin
		}
		if !m.isSupported(method) {
			return fmt.Errorf("%w: %s", ErrUnsupportedToken, method)
		}
		m.setSupported(method, nil)
		return nil
	})
	return err
}

func (m *Market) SetFeeRate(call Call, rate uint64) error {
	_, err := m.exec("setFeeRate", call, func(o *op) error {
		if o.call.Sender != m.admin {
			return ErrOnlyAdmin
		}
		if rate > fee.FeeRateDenominator {
			return fmt.Errorf("%w: %d", ErrInvalidFeeRate, rate)
		}
		prev := m.feeRate
		m.store.journal.Record(func() { m.feeRate = prev })
		m.feeRate = rate
		return nil
	})
	return err
}

func (m *Market) SetFeeRecipient(call Call, recipient string) error {
	_, err := m.exec("setFeeRecipient", call, func(o *op) error {
		if o.call.Sender != m.admin {
			return ErrOnlyAdmin
		}
		if recipient == "" {
			return errors.New("empty fee recipient")
		}
		prev := m.feeRecipient
		m.store.journal.Record(func() { m.feeRecipient = prev })
		m.feeRecipient = recipient
		return nil
	})
	return err
}

// Queries

func (m *Market) FeeRate() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.feeRate
}

func (m *Market) FeeRecipient() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.feeRecipient
}

func (m *Market) GetSupportedTokens() []entity.SupportedToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := make([]entity.SupportedToken, 0, len(m.supported))
	for _, token := range m.supported {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Method.String() < tokens[j].Method.String()
	})

	return tokens
}

func (m *Market) GetSupportedToken(method entity.PaymentMethod) (entity.SupportedToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.supported[method]
	return token, ok
}
