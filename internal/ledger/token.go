package ledger

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"strings"
	"sync"
)

type holding struct {
	token   string
	account string
}

type allowance struct {
	token   string
	owner   string
	spender string
}

// Tokens is an in-memory ledger for any number of fungible token contracts.
type Tokens struct {
	mu         sync.RWMutex
	journal    journal.Journal
	balances   map[holding]uint64
	allowances map[allowance]uint64
	rejecting  map[string]bool
}

func NewTokens() *Tokens {
	return &Tokens{
		balances:   make(map[holding]uint64),
		allowances: make(map[allowance]uint64),
		rejecting:  make(map[string]bool),
	}
}

func (t *Tokens) Mint(token, account string, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := holding{strings.ToLower(token), account}
	t.setBalance(h, t.balances[h]+amount)
}

func (t *Tokens) Approve(token, owner, spender string, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setAllowance(allowance{strings.ToLower(token), owner, spender}, amount)
}

func (t *Tokens) SetRejecting(account string, rejecting bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rejecting[account] = rejecting
}

func (t *Tokens) Allowance(token, owner, spender string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.allowances[allowance{strings.ToLower(token), owner, spender}]
}

func (t *Tokens) BalanceOf(token, account string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balances[holding{strings.ToLower(token), account}]
}

func (t *Tokens) Transfer(token, from, to string, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.move(strings.ToLower(token), from, to, amount)
}

func (t *Tokens) TransferFrom(token, spender, from, to string, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	token = strings.ToLower(token)
	key := allowance{token, from, spender}
	if spender != from && t.allowances[key] < amount {
		return fmt.Errorf("%w: %s allowance for %s is %d, needs %d", payment.ErrNotApproved, token, spender, t.allowances[key], amount)
	}

	if err := t.move(token, from, to, amount); err != nil {
		return err
	}
	if spender != from {
		t.setAllowance(key, t.allowances[key]-amount)
	}

	return nil
}

func (t *Tokens) move(token, from, to string, amount uint64) error {
	if t.rejecting[to] {
		return fmt.Errorf("%w: %s", payment.ErrTransferRejected, to)
	}

	src, dst := holding{token, from}, holding{token, to}
	if t.balances[src] < amount {
		return fmt.Errorf("%w: %s balance of %s is %d, needs %d", payment.ErrInsufficientFunds, token, from, t.balances[src], amount)
	}

	t.setBalance(src, t.balances[src]-amount)
	t.setBalance(dst, t.balances[dst]+amount)

	return nil
}

func (t *Tokens) setBalance(h holding, amount uint64) {
	prev, existed := t.balances[h]
	t.journal.Record(func() {
		if existed {
			t.balances[h] = prev
		} else {
			delete(t.balances, h)
		}
	})
	t.balances[h] = amount
}

func (t *Tokens) setAllowance(a allowance, amount uint64) {
	prev, existed := t.allowances[a]
	t.journal.Record(func() {
		if existed {
			t.allowances[a] = prev
		} else {
			delete(t.allowances, a)
		}
	})
	t.allowances[a] = amount
}

func (t *Tokens) Snapshot() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.journal.Snapshot()
}

func (t *Tokens) RevertTo(snapshot int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.journal.RevertTo(snapshot)
}

func (t *Tokens) Commit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.journal.Commit()
}
