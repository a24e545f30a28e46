package event

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"time"
)

type Type string

const (
	AllEvents Type = "*"

	ListingCreatedEvent   Type = "ListingCreatedEvent"
	ItemSoldEvent         Type = "ItemSoldEvent"
	ListingCanceledEvent  Type = "ListingCanceledEvent"
	AuctionStartedEvent   Type = "AuctionStartedEvent"
	BidPlacedEvent        Type = "BidPlacedEvent"
	AuctionDirectBuyEvent Type = "AuctionDirectBuyEvent"
	AuctionEndedEvent     Type = "AuctionEndedEvent"
	AuctionCanceledEvent  Type = "AuctionCanceledEvent"
	BidWithdrawnEvent     Type = "BidWithdrawnEvent"
	OfferMadeEvent        Type = "OfferMadeEvent"
	OfferAcceptedEvent    Type = "OfferAcceptedEvent"
	OfferCanceledEvent    Type = "OfferCanceledEvent"
)

// Event describes a committed marketplace operation.
type Event struct {
	Type          Type                 `json:"type"`
	Time          time.Time            `json:"time"`
	ReceiptId     string               `json:"receiptId"`
	Ref           string               `json:"ref"`
	Asset         entity.AssetId       `json:"asset"`
	PaymentMethod entity.PaymentMethod `json:"paymentMethod"`
	From          string               `json:"from,omitempty"`
	To            string               `json:"to,omitempty"`
	Amount        uint64               `json:"amount"`
	Settlement    *entity.Settlement   `json:"settlement,omitempty"`
}
