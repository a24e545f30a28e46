package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

const MarketplaceName = "ZilDuck"

// MarketplaceAction is the history document written for every committed marketplace operation.
type MarketplaceAction struct {
	Contract    string     `json:"contract"`
	TokenId     uint64     `json:"tokenId"`
	Ref         string     `json:"ref"`
	ReceiptId   string     `json:"receiptId"`
	Action      ActionType `json:"action"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Marketplace string     `json:"marketplace"`
	Cost        string     `json:"cost"`
	Fee         string     `json:"fee"`
	Royalty     string     `json:"royalty"`
	Fungible    string     `json:"fungible"`
	Time        time.Time  `json:"time"`
}

type ActionType string

const (
	TransferAction             ActionType = "transfer"
	MarketplaceSaleAction      ActionType = "sale"
	MarketplaceListingAction   ActionType = "listing"
	MarketplaceDelistingAction ActionType = "delisting"
	AuctionStartAction         ActionType = "auctionStart"
	AuctionBidAction           ActionType = "bid"
	AuctionCancelAction        ActionType = "auctionCancel"
	AuctionWithdrawAction      ActionType = "bidWithdraw"
	AuctionUnsoldAction        ActionType = "auctionUnsold"
	OfferAction                ActionType = "offer"
	OfferCancelAction          ActionType = "offerCancel"
)

func (a MarketplaceAction) Slug() string {
	return CreateMarketplaceActionSlug(a.TokenId, a.Contract, a.ReceiptId, string(a.Action))
}

func (a MarketplaceAction) Asset() AssetId {
	return AssetId{Contract: a.Contract, TokenId: a.TokenId}
}

func CreateMarketplaceActionSlug(tokenId uint64, contract, receiptId, action string) string {
	data := []byte(fmt.Sprintf("marketplaceaction-%d-%s-%s-%s", tokenId, contract, receiptId, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
