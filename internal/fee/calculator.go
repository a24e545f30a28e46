package fee

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"math/bits"
)

const (
	// FeeRateDenominator makes the platform fee rate parts-per-thousand.
	FeeRateDenominator uint64 = 1000
	// RoyaltyRateDenominator makes the royalty rate parts-per-ten-thousand (bps).
	RoyaltyRateDenominator uint64 = 10000
)

type Split struct {
	Price           uint64 `json:"price"`
	Fee             uint64 `json:"fee"`
	Royalty         uint64 `json:"royalty"`
	RoyaltyReceiver string `json:"royaltyReceiver,omitempty"`
	Seller          uint64 `json:"seller"`
}

// Calculate splits price into fee, royalty and seller shares. The shares always sum to price and any
// rounding remainder goes to the seller. No royalty is taken when the receiver is the seller.
func Calculate(price, feeRate uint64, royalty *entity.Royalty, seller string) Split {
	if feeRate > FeeRateDenominator {
		feeRate = FeeRateDenominator
	}

	split := Split{Price: price, Fee: mulDiv(price, feeRate, FeeRateDenominator)}

	if royalty != nil && royalty.Receiver != "" && royalty.Receiver != seller && royalty.RateBps > 0 {
		rate := royalty.RateBps
		if rate > RoyaltyRateDenominator {
			rate = RoyaltyRateDenominator
		}
		split.Royalty = mulDiv(price, rate, RoyaltyRateDenominator)
		if split.Royalty > price-split.Fee {
			split.Royalty = price - split.Fee
		}
		if split.Royalty > 0 {
			split.RoyaltyReceiver = royalty.Receiver
		}
	}

	split.Seller = price - split.Fee - split.Royalty

	return split
}

// mulDiv computes amount*rate/denominator without overflowing. rate must not exceed denominator.
func mulDiv(amount, rate, denominator uint64) uint64 {
	hi, lo := bits.Mul64(amount, rate)
	quo, _ := bits.Div64(hi, lo, denominator)
	return quo
}
