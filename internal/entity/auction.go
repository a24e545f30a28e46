package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"time"
)

type AuctionStatus string

const (
	AuctionOpen      AuctionStatus = "open"
	AuctionEnded     AuctionStatus = "ended"
	AuctionDirectBuy AuctionStatus = "direct_buy"
	AuctionCanceled  AuctionStatus = "canceled"

	// Derived only, never stored.
	AuctionPending  AuctionStatus = "pending"
	AuctionClosable AuctionStatus = "closable"
)

type Auction struct {
	Id             uint64        `json:"id"`
	Asset          AssetId       `json:"asset"`
	Seller         string        `json:"seller"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	HighestBidder  string        `json:"highestBidder,omitempty"`
	HighestBid     uint64        `json:"highestBid"`
	DirectBuyPrice uint64        `json:"directBuyPrice"`
	StartPrice     uint64        `json:"startPrice"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"`
	Status         AuctionStatus `json:"status"`
	Winner         string        `json:"winner,omitempty"`
}

func (a Auction) Slug() string {
	return CreateAuctionSlug(a.Id)
}

func CreateAuctionSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("auction-%d", id))
}

// EffectiveStatus combines the stored status with the bidding window [StartTime, EndTime].
// A stored Open auction is pending before the window and closable after it.
func (a Auction) EffectiveStatus(now time.Time) AuctionStatus {
	if a.Status != AuctionOpen {
		return a.Status
	}
	if now.Before(a.StartTime) {
		return AuctionPending
	}
	if now.After(a.EndTime) {
		return AuctionClosable
	}

	return AuctionOpen
}

func (a Auction) AcceptsBids(now time.Time) bool {
	return a.EffectiveStatus(now) == AuctionOpen
}

func (a Auction) HasBid() bool {
	return a.HighestBidder != ""
}

func (a Auction) IsTerminal() bool {
	return a.Status != AuctionOpen
}
