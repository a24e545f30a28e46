package ledger

import (
	"errors"
	"testing"

	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"github.com/peterldowns/testy/check"
)

func TestBank_Transfer(t *testing.T) {
	b := NewBank()
	b.Mint("alice", 100)

	check.NoError(t, b.Transfer("alice", "bob", 40))
	check.Equal(t, uint64(60), b.BalanceOf("alice"))
	check.Equal(t, uint64(40), b.BalanceOf("bob"))
}

func TestBank_TransferInsufficientFunds(t *testing.T) {
	b := NewBank()
	b.Mint("alice", 10)

	err := b.Transfer("alice", "bob", 11)
	check.True(t, errors.Is(err, payment.ErrInsufficientFunds))
	check.Equal(t, uint64(10), b.BalanceOf("alice"))
}

func TestBank_RejectingRecipient(t *testing.T) {
	b := NewBank()
	b.Mint("alice", 10)
	b.SetRejecting("contract", true)

	err := b.Transfer("alice", "contract", 5)
	check.True(t, errors.Is(err, payment.ErrTransferRejected))
}

func TestBank_RevertTo(t *testing.T) {
	b := NewBank()
	b.Mint("alice", 10)
	b.Commit()

	snap := b.Snapshot()
	check.NoError(t, b.Transfer("alice", "bob", 7))
	b.RevertTo(snap)

	check.Equal(t, uint64(10), b.BalanceOf("alice"))
	check.Equal(t, uint64(0), b.BalanceOf("bob"))
}

func TestTokens_TransferFromConsumesAllowance(t *testing.T) {
	tk := NewTokens()
	tk.Mint("0xTOKEN", "alice", 100)
	tk.Approve("0xtoken", "alice", "market", 60)

	check.NoError(t, tk.TransferFrom("0xtoken", "market", "alice", "market", 50))
	check.Equal(t, uint64(50), tk.BalanceOf("0xtoken", "alice"))
	check.Equal(t, uint64(50), tk.BalanceOf("0xtoken", "market"))
	check.Equal(t, uint64(10), tk.Allowance("0xtoken", "alice", "market"))
}

func TestTokens_TransferFromWithoutAllowance(t *testing.T) {
	tk := NewTokens()
	tk.Mint("0xtoken", "alice", 100)
	tk.Approve("0xtoken", "alice", "market", 5)

	err := tk.TransferFrom("0xtoken", "market", "alice", "market", 6)
	check.True(t, errors.Is(err, payment.ErrNotApproved))
	check.Equal(t, uint64(100), tk.BalanceOf("0xtoken", "alice"))
}

func TestTokens_TransferFromInsufficientBalance(t *testing.T) {
	tk := NewTokens()
	tk.Mint("0xtoken", "alice", 5)
	tk.Approve("0xtoken", "alice", "market", 50)

	err := tk.TransferFrom("0xtoken", "market", "alice", "market", 6)
	check.True(t, errors.Is(err, payment.ErrInsufficientFunds))
	check.Equal(t, uint64(50), tk.Allowance("0xtoken", "alice", "market"))
}

func TestTokens_RevertRestoresAllowance(t *testing.T) {
	tk := NewTokens()
	tk.Mint("0xtoken", "alice", 100)
	tk.Approve("0xtoken", "alice", "market", 100)
	tk.Commit()

	snap := tk.Snapshot()
	check.NoError(t, tk.TransferFrom("0xtoken", "market", "alice", "bob", 30))
	tk.RevertTo(snap)

	check.Equal(t, uint64(100), tk.BalanceOf("0xtoken", "alice"))
	check.Equal(t, uint64(0), tk.BalanceOf("0xtoken", "bob"))
	check.Equal(t, uint64(100), tk.Allowance("0xtoken", "alice", "market"))
}
