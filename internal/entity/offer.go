package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"time"
)

type OfferStatus string

const (
	OfferActive OfferStatus = "active"
	OfferEnded  OfferStatus = "ended"
)

// Offer is a standing buy offer. Id is the position of the offer within the asset's offer list.
type Offer struct {
	Id            uint64        `json:"id"`
	Asset         AssetId       `json:"asset"`
	Offerer       string        `json:"offerer"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Price         uint64        `json:"price"`
	ExpireTime    time.Time     `json:"expireTime"`
	Status        OfferStatus   `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (o Offer) Slug() string {
	return CreateOfferSlug(o.Asset, o.Id)
}

func (o Offer) IsActive() bool {
	return o.Status == OfferActive
}

func (o Offer) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpireTime)
}

func CreateOfferSlug(asset AssetId, id uint64) string {
	return slug.Make(fmt.Sprintf("offer-%d-%s", id, asset.Slug()))
}
