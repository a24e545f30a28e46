package escrow

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"math/bits"
)

var (
	ErrNoEscrowBalance = errors.New("no escrow balance")
	ErrEscrowOverflow  = errors.New("escrow balance overflow")
)

// Ledger tracks outstanding bid balances per auction and bidder. Entries are zeroed, never removed.
// It is not safe for concurrent use; the market serialises access.
type Ledger struct {
	router  *payment.Router
	journal journal.Journal
	entries map[entity.EscrowKey]uint64
	bidders map[uint64][]string
	totals  map[uint64]uint64
}

func NewLedger(router *payment.Router) *Ledger {
	return &Ledger{
		router:  router,
		entries: make(map[entity.EscrowKey]uint64),
		bidders: make(map[uint64][]string),
		totals:  make(map[uint64]uint64),
	}
}

// Deposit adds amount to the bidder's entry and collects it. Returns the bidder's cumulative balance.
func (l *Ledger) Deposit(auctionId uint64, bidder string, method entity.PaymentMethod, amount, attached uint64) (uint64, error) {
	key := entity.EscrowKey{AuctionId: auctionId, Bidder: bidder}

	balance, carry := bits.Add64(l.entries[key], amount, 0)
	if carry != 0 {
		return 0, ErrEscrowOverflow
	}
	total, carry := bits.Add64(l.totals[auctionId], amount, 0)
	if carry != 0 {
		return 0, ErrEscrowOverflow
	}

	l.set(key, balance)
	l.setTotal(auctionId, total)

	if err := l.router.Collect(bidder, method, amount, attached); err != nil {
		return 0, err
	}

	return balance, nil
}

// Refund zeroes the bidder's entry and pays the full amount back.
func (l *Ledger) Refund(auctionId uint64, bidder string, method entity.PaymentMethod) (uint64, error) {
	amount, err := l.Consume(auctionId, bidder)
	if err != nil {
		return 0, err
	}

	if err := l.router.Disburse(bidder, method, amount); err != nil {
		return 0, err
	}

	return amount, nil
}

// Consume zeroes the bidder's entry without paying it out, for funds spent by settlement.
func (l *Ledger) Consume(auctionId uint64, bidder string) (uint64, error) {
	key := entity.EscrowKey{AuctionId: auctionId, Bidder: bidder}

	amount := l.entries[key]
	if amount == 0 {
		return 0, fmt.Errorf("%w: %s in auction %d", ErrNoEscrowBalance, bidder, auctionId)
	}

	l.set(key, 0)
	l.setTotal(auctionId, l.totals[auctionId]-amount)

	return amount, nil
}

func (l *Ledger) BalanceOf(auctionId uint64, bidder string) uint64 {
	return l.entries[entity.EscrowKey{AuctionId: auctionId, Bidder: bidder}]
}

// Total is the sum of all outstanding entries for the auction.
func (l *Ledger) Total(auctionId uint64) uint64 {
	return l.totals[auctionId]
}

// Entries lists every bidder that ever bid on the auction, in first-bid order, including zeroed entries.
func (l *Ledger) Entries(auctionId uint64) []entity.EscrowEntry {
	entries := make([]entity.EscrowEntry, 0, len(l.bidders[auctionId]))
	for _, bidder := range l.bidders[auctionId] {
		entries = append(entries, entity.EscrowEntry{
			AuctionId: auctionId,
			Bidder:    bidder,
			Amount:    l.BalanceOf(auctionId, bidder),
		})
	}

	return entries
}

func (l *Ledger) set(key entity.EscrowKey, amount uint64) {
	prev, existed := l.entries[key]
	if !existed {
		bidders := l.bidders[key.AuctionId]
		l.bidders[key.AuctionId] = append(bidders, key.Bidder)
	}

	l.journal.Record(func() {
		if existed {
			l.entries[key] = prev
			return
		}
		delete(l.entries, key)
		b := l.bidders[key.AuctionId]
		l.bidders[key.AuctionId] = b[:len(b)-1]
	})
	l.entries[key] = amount
}

func (l *Ledger) setTotal(auctionId uint64, amount uint64) {
	prev := l.totals[auctionId]
	l.journal.Record(func() { l.totals[auctionId] = prev })
	l.totals[auctionId] = amount
}

func (l *Ledger) Snapshot() int {
	return l.journal.Snapshot()
}

func (l *Ledger) RevertTo(snapshot int) {
	l.journal.RevertTo(snapshot)
}

func (l *Ledger) Commit() {
	l.journal.Commit()
}
