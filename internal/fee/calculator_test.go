package fee

import (
	"math"
	"testing"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/peterldowns/testy/check"
)

func TestCalculate_FeeOnly(t *testing.T) {
	split := Calculate(10_000, 25, nil, "seller")

	check.Equal(t, uint64(250), split.Fee)
	check.Equal(t, uint64(0), split.Royalty)
	check.Equal(t, "", split.RoyaltyReceiver)
	check.Equal(t, uint64(9_750), split.Seller)
}

func TestCalculate_FeeAndRoyalty(t *testing.T) {
	royalty := &entity.Royalty{Receiver: "creator", RateBps: 500}

	split := Calculate(10_000, 25, royalty, "seller")

	check.Equal(t, uint64(250), split.Fee)
	check.Equal(t, uint64(500), split.Royalty)
	check.Equal(t, "creator", split.RoyaltyReceiver)
	check.Equal(t, uint64(9_250), split.Seller)
}

func TestCalculate_NoRoyaltyWhenSellerIsCreator(t *testing.T) {
	royalty := &entity.Royalty{Receiver: "creator", RateBps: 1000}

	split := Calculate(10_000, 0, royalty, "creator")

	check.Equal(t, uint64(0), split.Royalty)
	check.Equal(t, uint64(10_000), split.Seller)
}

func TestCalculate_RemainderGoesToSeller(t *testing.T) {
	royalty := &entity.Royalty{Receiver: "creator", RateBps: 333}

	split := Calculate(7, 25, royalty, "seller")

	// 7*25/1000 and 7*333/10000 both round down to zero
	check.Equal(t, uint64(0), split.Fee)
	check.Equal(t, uint64(0), split.Royalty)
	check.Equal(t, "", split.RoyaltyReceiver)
	check.Equal(t, uint64(7), split.Seller)
}

func TestCalculate_RatesAreClamped(t *testing.T) {
	royalty := &entity.Royalty{Receiver: "creator", RateBps: 50_000}

	split := Calculate(1_000, 900, royalty, "seller")

	check.Equal(t, uint64(900), split.Fee)
	check.Equal(t, uint64(100), split.Royalty)
	check.Equal(t, uint64(0), split.Seller)
}

func TestCalculate_LargePriceDoesNotOverflow(t *testing.T) {
	split := Calculate(math.MaxUint64, 1000, nil, "seller")

	check.Equal(t, uint64(math.MaxUint64), split.Fee)
	check.Equal(t, uint64(0), split.Seller)
}

func TestCalculate_SharesAlwaysSumToPrice(t *testing.T) {
	royalty := &entity.Royalty{Receiver: "creator", RateBps: 777}

	for _, price := range []uint64{0, 1, 9, 10, 99, 101, 12_345, 1_000_003, math.MaxUint64 / 3} {
		for _, rate := range []uint64{0, 1, 25, 333, 1000} {
			split := Calculate(price, rate, royalty, "seller")
			check.Equal(t, price, split.Fee+split.Royalty+split.Seller)
			check.Equal(t, price, split.Price)
		}
	}
}
