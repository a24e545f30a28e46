package entity

import (
	"github.com/nu7hatch/gouuid"
)

// Settlement records how a sale price was split between the platform, the royalty receiver and the seller.
type Settlement struct {
	Asset           AssetId       `json:"asset"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Buyer           string        `json:"buyer"`
	Seller          string        `json:"seller"`
	Price           uint64        `json:"price"`
	Fee             uint64        `json:"fee"`
	FeeRecipient    string        `json:"feeRecipient"`
	Royalty         uint64        `json:"royalty"`
	RoyaltyReceiver string        `json:"royaltyReceiver,omitempty"`
	SellerAmount    uint64        `json:"sellerAmount"`
}

type Receipt struct {
	Id         string      `json:"id"`
	Operation  string      `json:"operation"`
	Ref        string      `json:"ref"`
	RecordId   uint64      `json:"recordId"`
	Amount     uint64      `json:"amount,omitempty"`
	Settlement *Settlement `json:"settlement,omitempty"`
}

func (r Receipt) Slug() string {
	return r.Id
}

func NewReceiptId() string {
	u, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return u.String()
}
