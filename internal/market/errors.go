package market

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/escrow"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
)

type Kind string

const (
	Authorization Kind = "authorization"
	StateConflict Kind = "state_conflict"
	Validation    Kind = "validation"
	Funds         Kind = "funds"
	NotFound      Kind = "not_found"
	Internal      Kind = "internal"
)

var (
	ErrOnlyTokenOwner   = errors.New("only token owner")
	ErrOnlySeller       = errors.New("only seller")
	ErrOnlyOfferer      = errors.New("only offerer")
	ErrOnlyAdmin        = errors.New("only admin")
	ErrSellerCannotBuy  = errors.New("seller cannot buy own item")
	ErrOwnerCannotOffer = errors.New("owner cannot make an offer on own asset")

	ErrListingNotActive      = errors.New("listing not active")
	ErrAuctionNotOpen        = errors.New("auction not open")
	ErrAuctionPeriodNotEnded = errors.New("auction period not ended")
	ErrOfferNotActive        = errors.New("offer not active")
	ErrCancelImpossible      = errors.New("cancel impossible")
	ErrAlreadyHighestBid     = errors.New("already highest bid")
	ErrIsHighestBidder       = errors.New("is highest bidder")
	ErrAssetAlreadyListed    = errors.New("asset already listed")
	ErrSellerNoLongerOwner   = errors.New("seller no longer owns the asset")

	ErrInvalidAuctionPeriod  = errors.New("invalid auction period")
	ErrInvalidStartPrice     = errors.New("invalid start price")
	ErrInvalidDirectBuyPrice = errors.New("invalid direct buy price")
	ErrInvalidExpirationTime = errors.New("invalid expiration time")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidBidAmount      = errors.New("invalid bid amount")
	ErrBidBelowStartPrice    = errors.New("bid below start price")
	ErrInvalidFeeRate        = errors.New("invalid fee rate")
	ErrUnsupportedToken      = errors.New("unsupported token")
	ErrItemNotApproved       = errors.New("item not approved")

	ErrInsufficientAmount     = payment.ErrInsufficientFunds
	ErrNotApproved            = payment.ErrNotApproved
	ErrAmountMismatch         = payment.ErrAmountMismatch
	ErrPaymentDeliveryFailed  = payment.ErrPaymentDeliveryFailed
	ErrNoEscrowBalance        = escrow.ErrNoEscrowBalance
	ErrHasNoBid               = errors.New("has no bid")
	ErrOfferAmountNotApproved = errors.New("offer amount not approved")

	ErrAssetNotFound   = errors.New("asset not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrAuctionNotFound = errors.New("auction not found")
	ErrOfferNotFound   = errors.New("offer not found")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrOnlyTokenOwner, Authorization},
	{ErrOnlySeller, Authorization},
	{ErrOnlyOfferer, Authorization},
	{ErrOnlyAdmin, Authorization},
	{ErrSellerCannotBuy, Authorization},
	{ErrOwnerCannotOffer, Authorization},

	{ErrListingNotActive, StateConflict},
	{ErrAuctionNotOpen, StateConflict},
	{ErrAuctionPeriodNotEnded, StateConflict},
	{ErrOfferNotActive, StateConflict},
	{ErrCancelImpossible, StateConflict},
	{ErrAlreadyHighestBid, StateConflict},
	{ErrIsHighestBidder, StateConflict},
	{ErrAssetAlreadyListed, StateConflict},
	{ErrSellerNoLongerOwner, StateConflict},

	{ErrInvalidAuctionPeriod, Validation},
	{ErrInvalidStartPrice, Validation},
	{ErrInvalidDirectBuyPrice, Validation},
	{ErrInvalidExpirationTime, Validation},
	{ErrInvalidPrice, Validation},
	{ErrInvalidBidAmount, Validation},
	{ErrBidBelowStartPrice, Validation},
	{ErrInvalidFeeRate, Validation},
	{ErrUnsupportedToken, Validation},
	{ErrItemNotApproved, Validation},

	{ErrHasNoBid, Funds},
	{ErrOfferAmountNotApproved, Funds},
	{ErrInsufficientAmount, Funds},
	{ErrNotApproved, Funds},
	{ErrAmountMismatch, Funds},
	{ErrPaymentDeliveryFailed, Funds},
	{ErrNoEscrowBalance, Funds},
	{escrow.ErrEscrowOverflow, Funds},

	{ErrAssetNotFound, NotFound},
	{ErrListingNotFound, NotFound},
	{ErrAuctionNotFound, NotFound},
	{ErrOfferNotFound, NotFound},
}

// Error is returned by every failed marketplace operation. Err identifies the violated precondition.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("market: %s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) error {
	var merr *Error
	if errors.As(err, &merr) {
		return merr
	}

	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

// KindOf reports the taxonomy category of err, or Internal when it is not a marketplace error.
func KindOf(err error) Kind {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind
	}
	return kindOf(err)
}

func kindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return Internal
}
