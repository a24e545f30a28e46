package escrow_test

import (
	"errors"
	"testing"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/escrow"
	"github.com/ZilDuck/zilliqa-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func newLedger(t *testing.T) (*escrow.Ledger, *ledger.Bank) {
	t.Helper()
	bank := ledger.NewBank()
	router := payment.NewRouter(bank, ledger.NewTokens(), "market")
	return escrow.NewLedger(router), bank
}

func TestLedger_DepositAccumulates(t *testing.T) {
	l, bank := newLedger(t)
	bank.Mint("alice", 100)

	total, err := l.Deposit(1, "alice", entity.Native, 15, 15)
	assert.NoError(t, err)
	check.Equal(t, uint64(15), total)

	total, err = l.Deposit(1, "alice", entity.Native, 10, 10)
	assert.NoError(t, err)
	check.Equal(t, uint64(25), total)

	check.Equal(t, uint64(25), l.BalanceOf(1, "alice"))
	check.Equal(t, uint64(25), l.Total(1))
	check.Equal(t, uint64(25), bank.BalanceOf("market"))
}

func TestLedger_RefundPaysOnce(t *testing.T) {
	l, bank := newLedger(t)
	bank.Mint("alice", 100)
	_, err := l.Deposit(1, "alice", entity.Native, 30, 30)
	assert.NoError(t, err)

	amount, err := l.Refund(1, "alice", entity.Native)
	assert.NoError(t, err)
	check.Equal(t, uint64(30), amount)
	check.Equal(t, uint64(100), bank.BalanceOf("alice"))

	_, err = l.Refund(1, "alice", entity.Native)
	check.True(t, errors.Is(err, escrow.ErrNoEscrowBalance))
	check.Equal(t, uint64(100), bank.BalanceOf("alice"))
	check.Equal(t, uint64(0), bank.BalanceOf("market"))
}

func TestLedger_EntriesKeepZeroedBidders(t *testing.T) {
	l, bank := newLedger(t)
	bank.Mint("alice", 100)
	bank.Mint("bob", 100)
	_, _ = l.Deposit(7, "alice", entity.Native, 10, 10)
	_, _ = l.Deposit(7, "bob", entity.Native, 20, 20)
	_, err := l.Consume(7, "alice")
	assert.NoError(t, err)

	entries := l.Entries(7)
	check.Equal(t, 2, len(entries))
	check.Equal(t, "alice", entries[0].Bidder)
	check.Equal(t, uint64(0), entries[0].Amount)
	check.Equal(t, "bob", entries[1].Bidder)
	check.Equal(t, uint64(20), entries[1].Amount)
	check.Equal(t, uint64(20), l.Total(7))
}

func TestLedger_RevertUndoesDeposit(t *testing.T) {
	l, bank := newLedger(t)
	bank.Mint("alice", 100)
	bank.Commit()

	snap := l.Snapshot()
	_, err := l.Deposit(1, "alice", entity.Native, 10, 10)
	assert.NoError(t, err)
	l.RevertTo(snap)

	check.Equal(t, uint64(0), l.BalanceOf(1, "alice"))
	check.Equal(t, uint64(0), l.Total(1))
	check.Equal(t, 0, len(l.Entries(1)))
}

func TestLedger_DepositFailsWithoutFunds(t *testing.T) {
	l, bank := newLedger(t)
	bank.Mint("alice", 5)

	_, err := l.Deposit(1, "alice", entity.Native, 10, 10)
	check.True(t, errors.Is(err, payment.ErrInsufficientFunds))
}
