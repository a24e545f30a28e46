package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"time"
)

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingSold     ListingStatus = "sold"
	ListingCanceled ListingStatus = "canceled"
)

type Listing struct {
	Id            uint64        `json:"id"`
	Asset         AssetId       `json:"asset"`
	Seller        string        `json:"seller"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Price         uint64        `json:"price"`
	Status        ListingStatus `json:"status"`
	Buyer         string        `json:"buyer,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func (l Listing) IsActive() bool {
	return l.Status == ListingActive
}

func CreateListingSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", id))
}
