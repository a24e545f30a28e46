package payment

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/fee"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrNotApproved           = errors.New("not approved")
	ErrAmountMismatch        = errors.New("amount mismatch")
	ErrPaymentDeliveryFailed = errors.New("payment delivery failed")
	ErrTransferRejected      = errors.New("transfer rejected by recipient")
)

// NativeLedger moves the network currency.
type NativeLedger interface {
	BalanceOf(account string) uint64
	Transfer(from, to string, amount uint64) error
}

// TokenLedger moves fungible tokens, either pushed by the holder or pulled by an approved spender.
type TokenLedger interface {
	BalanceOf(token, account string) uint64
	Transfer(token, from, to string, amount uint64) error
	TransferFrom(token, spender, from, to string, amount uint64) error
}

type Router struct {
	native  NativeLedger
	tokens  TokenLedger
	custody string
}

// NewRouter creates a router holding escrowed funds under the custody account.
func NewRouter(native NativeLedger, tokens TokenLedger, custody string) *Router {
	return &Router{native: native, tokens: tokens, custody: custody}
}

func (r *Router) Custody() string {
	return r.custody
}

// Collect moves amount from payer into custody. For native payments the value attached to the call must equal amount.
func (r *Router) Collect(payer string, method entity.PaymentMethod, amount, attached uint64) error {
	if method.IsNative() {
		if attached != amount {
			return fmt.Errorf("%w: attached %d, expected %d", ErrAmountMismatch, attached, amount)
		}
		if amount == 0 {
			return nil
		}
		if err := r.native.Transfer(payer, r.custody, amount); err != nil {
			return collectError(err)
		}
		return nil
	}

	if attached != 0 {
		return fmt.Errorf("%w: native value attached to %s payment", ErrAmountMismatch, method)
	}
	if amount == 0 {
		return nil
	}
	if err := r.tokens.TransferFrom(method.Token, r.custody, payer, r.custody, amount); err != nil {
		return collectError(err)
	}

	return nil
}

// Disburse pushes amount from custody to recipient. Zero amounts are a no-op.
func (r *Router) Disburse(recipient string, method entity.PaymentMethod, amount uint64) error {
	if amount == 0 {
		return nil
	}

	var err error
	if method.IsNative() {
		err = r.native.Transfer(r.custody, recipient, amount)
	} else {
		err = r.tokens.Transfer(method.Token, r.custody, recipient, amount)
	}

	if err != nil {
		zap.L().With(
			zap.String("recipient", recipient),
			zap.String("method", method.String()),
			zap.Uint64("amount", amount),
			zap.Error(err),
		).Warn("PaymentRouter: Disburse failed")
		return fmt.Errorf("%w: %s to %s: %v", ErrPaymentDeliveryFailed, method, recipient, err)
	}

	return nil
}

// Distribute pays out a split held in custody: fee to feeRecipient, royalty to its receiver and the rest to seller.
func (r *Router) Distribute(method entity.PaymentMethod, split fee.Split, feeRecipient, seller string) error {
	if err := r.Disburse(feeRecipient, method, split.Fee); err != nil {
		return err
	}
	if err := r.Disburse(split.RoyaltyReceiver, method, split.Royalty); err != nil {
		return err
	}

	return r.Disburse(seller, method, split.Seller)
}

func (r *Router) Balance(method entity.PaymentMethod) uint64 {
	if method.IsNative() {
		return r.native.BalanceOf(r.custody)
	}
	return r.tokens.BalanceOf(method.Token, r.custody)
}

func collectError(err error) error {
	if errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrNotApproved) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
}
