package ledger

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"sync"
)

// Bank is an in-memory native currency ledger.
type Bank struct {
	mu        sync.RWMutex
	journal   journal.Journal
	balances  map[string]uint64
	rejecting map[string]bool
}

func NewBank() *Bank {
	return &Bank{
		balances:  make(map[string]uint64),
		rejecting: make(map[string]bool),
	}
}

func (b *Bank) Mint(account string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBalance(account, b.balances[account]+amount)
}

// SetRejecting makes account refuse incoming transfers, like a contract without a payable fallback.
func (b *Bank) SetRejecting(account string, rejecting bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rejecting[account] = rejecting
}

func (b *Bank) BalanceOf(account string) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.balances[account]
}

func (b *Bank) Transfer(from, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rejecting[to] {
		return fmt.Errorf("%w: %s", payment.ErrTransferRejected, to)
	}
	if b.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", payment.ErrInsufficientFunds, from, b.balances[from], amount)
	}

	b.setBalance(from, b.balances[from]-amount)
	b.setBalance(to, b.balances[to]+amount)

	return nil
}

func (b *Bank) setBalance(account string, amount uint64) {
	prev, existed := b.balances[account]
	b.journal.Record(func() {
		if existed {
			b.balances[account] = prev
		} else {
			delete(b.balances, account)
		}
	})
	b.balances[account] = amount
}

func (b *Bank) Snapshot() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.journal.Snapshot()
}

func (b *Bank) RevertTo(snapshot int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.journal.RevertTo(snapshot)
}

func (b *Bank) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.journal.Commit()
}
