package entity_test

import (
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestAuction_EffectiveStatus(t *testing.T) {
	start := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	auction := entity.Auction{Status: entity.AuctionOpen, StartTime: start, EndTime: start.Add(time.Hour)}

	check.Equal(t, entity.AuctionPending, auction.EffectiveStatus(start.Add(-time.Nanosecond)))
	check.Equal(t, entity.AuctionOpen, auction.EffectiveStatus(start))
	check.Equal(t, entity.AuctionOpen, auction.EffectiveStatus(start.Add(time.Hour)))
	check.Equal(t, entity.AuctionClosable, auction.EffectiveStatus(start.Add(time.Hour+time.Nanosecond)))

	check.True(t, auction.AcceptsBids(start.Add(time.Minute)))
	check.False(t, auction.AcceptsBids(start.Add(2*time.Hour)))

	auction.Status = entity.AuctionCanceled
	check.Equal(t, entity.AuctionCanceled, auction.EffectiveStatus(start.Add(time.Minute)))
	check.False(t, auction.AcceptsBids(start.Add(time.Minute)))
	check.True(t, auction.IsTerminal())
}

func TestFormatAmount(t *testing.T) {
	check.Equal(t, "1.5", entity.FormatAmount(1500000000000, entity.NativeDecimals))
	check.Equal(t, "0.000001", entity.FormatAmount(1, 6))
	check.Equal(t, "10", entity.FormatAmount(10, 0))
	check.Equal(t, "0", entity.FormatAmount(0, 12))
}

func TestParseAmount(t *testing.T) {
	amount, err := entity.ParseAmount("1.5", entity.NativeDecimals)
	assert.NoError(t, err)
	check.Equal(t, uint64(1500000000000), amount)

	amount, err = entity.ParseAmount(entity.FormatAmount(123456, 6), 6)
	assert.NoError(t, err)
	check.Equal(t, uint64(123456), amount)

	for _, value := range []string{"abc", "-1", "0.0000001", "18446744073709551616"} {
		_, err := entity.ParseAmount(value, 6)
		check.Error(t, err)
	}
}

func TestParseAssetId(t *testing.T) {
	asset, err := entity.ParseAssetId("0xNFT#42")
	assert.NoError(t, err)
	check.Equal(t, entity.NewAssetId("0xnft", 42), asset)
	check.Equal(t, "0xnft#42", asset.String())

	for _, value := range []string{"", "0xnft", "#1", "0xnft#x", "0xnft#1#2"} {
		_, err := entity.ParseAssetId(value)
		check.Error(t, err)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := entity.ParsePaymentMethod("ZIL")
	assert.NoError(t, err)
	check.True(t, method.IsNative())
	check.Equal(t, entity.NativeSymbol, method.String())

	method, err = entity.ParsePaymentMethod(" 0xUSD ")
	assert.NoError(t, err)
	check.Equal(t, entity.Token("0xusd"), method)
	check.False(t, method.IsNative())

	_, err = entity.ParsePaymentMethod("  ")
	check.Error(t, err)
}

func TestSlugs(t *testing.T) {
	check.Equal(t, "nft-1-0xnft", entity.NewAssetId("0xNFT", 1).Slug())
	check.Equal(t, "auction-7", entity.Auction{Id: 7}.Slug())
	check.Equal(t, "listing-7", entity.Listing{Id: 7}.Slug())
	check.True(t, entity.Offer{Asset: entity.NewAssetId("0xnft", 1), Id: 2}.Slug() != entity.Offer{Asset: entity.NewAssetId("0xnft", 2), Id: 2}.Slug())

	a := entity.MarketplaceAction{Contract: "0xnft", TokenId: 1, ReceiptId: "r", Action: entity.MarketplaceSaleAction}
	b := a
	b.Action = entity.TransferAction
	check.True(t, a.Slug() != b.Slug())
	check.Equal(t, entity.NewAssetId("0xnft", 1), a.Asset())
}
