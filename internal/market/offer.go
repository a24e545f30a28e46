package market

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"time"
)

// MakeOffer places a standing buy offer on asset. The offered price is taken into custody immediately.
func (m *Market) MakeOffer(call Call, asset entity.AssetId, method entity.PaymentMethod, price uint64, expireTime time.Time) (*entity.Receipt, error) {
	return m.exec("makeOffer", call, func(o *op) error {
		if !m.isSupported(method) {
			return fmt.Errorf("%w: %s", ErrUnsupportedToken, method)
		}
		if price == 0 {
			return ErrInvalidPrice
		}

		owner, err := m.ownerOf(asset)
		if err != nil {
			return err
		}
		if owner == o.call.Sender {
			return ErrOwnerCannotOffer
		}
		if !expireTime.After(o.now) {
			return ErrInvalidExpirationTime
		}

		offer := m.store.addOffer(entity.Offer{
			Asset:         asset,
			Offerer:       o.call.Sender,
			PaymentMethod: method,
			Price:         price,
			ExpireTime:    expireTime,
			Status:        entity.OfferActive,
			CreatedAt:     o.now,
		})

		if method.IsNative() && o.call.Value < price {
			o.valueUsed = true
			return fmt.Errorf("%w: attached %d, offered %d", ErrInsufficientAmount, o.call.Value, price)
		}
		if err := m.collect(o, offer.Offerer, method, price); err != nil {
			if errors.Is(err, ErrNotApproved) {
				return fmt.Errorf("%w: %v", ErrOfferAmountNotApproved, err)
			}
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = offer.Slug(), offer.Id, price
		o.emit(event.Event{
			Type:          event.OfferMadeEvent,
			Ref:           offer.Slug(),
			Asset:         asset,
			PaymentMethod: method,
			From:          offer.Offerer,
			Amount:        price,
		})

		return nil
	})
}

// AcceptOffer sells the asset to the offerer at the offered price. Expiry is not re-checked here.
func (m *Market) AcceptOffer(call Call, asset entity.AssetId, offerId uint64) (*entity.Receipt, error) {
	return m.exec("acceptOffer", call, func(o *op) error {
		offer, ok := m.store.offer(asset, offerId)
		if !ok {
			return ErrOfferNotFound
		}
		if !offer.IsActive() {
			return ErrOfferNotActive
		}

		seller := o.call.Sender
		owner, err := m.ownerOf(asset)
		if err != nil {
			return err
		}
		if owner != seller {
			return ErrOnlyTokenOwner
		}
		if !m.assets.IsApprovedForTransfer(asset, m.Custody()) {
			return ErrItemNotApproved
		}

		offer.Status = entity.OfferEnded
		m.store.putOffer(offer)

		// A fixed-price listing of the same asset cannot survive the sale.
		if ref, locked := m.store.lockedBy(asset); locked {
			if err := m.closeListingByRef(o, ref); err != nil {
				return err
			}
		}

		if err := m.settle(o, asset, offer.PaymentMethod, offer.Price, seller, offer.Offerer); err != nil {
			return err
		}
		if err := m.moveAsset(asset, seller, offer.Offerer); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = offer.Slug(), offer.Id, offer.Price
		o.emit(event.Event{
			Type:          event.OfferAcceptedEvent,
			Ref:           offer.Slug(),
			Asset:         asset,
			PaymentMethod: offer.PaymentMethod,
			From:          seller,
			To:            offer.Offerer,
			Amount:        offer.Price,
			Settlement:    o.receipt.Settlement,
		})

		return nil
	})
}

// CancelOffer ends the caller's offer and refunds the escrowed price in full.
func (m *Market) CancelOffer(call Call, asset entity.AssetId, offerId uint64) (*entity.Receipt, error) {
	return m.exec("cancelOffer", call, func(o *op) error {
		offer, ok := m.store.offer(asset, offerId)
		if !ok {
			return ErrOfferNotFound
		}
		if offer.Offerer != o.call.Sender {
			return ErrOnlyOfferer
		}
		if !offer.IsActive() {
			return ErrOfferNotActive
		}

		offer.Status = entity.OfferEnded
		m.store.putOffer(offer)

		if err := m.router.Disburse(offer.Offerer, offer.PaymentMethod, offer.Price); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = offer.Slug(), offer.Id, offer.Price
		o.emit(event.Event{
			Type:          event.OfferCanceledEvent,
			Ref:           offer.Slug(),
			Asset:         asset,
			PaymentMethod: offer.PaymentMethod,
			To:            offer.Offerer,
			Amount:        offer.Price,
		})

		return nil
	})
}

// closeListingByRef cancels the active listing holding the asset lock. Auctions hold the asset in
// custody, so the owner can never accept an offer while one is open.
func (m *Market) closeListingByRef(o *op, ref string) error {
	for _, listing := range m.store.listings {
		if listing.IsActive() && listing.Slug() == ref {
			listing.Status = entity.ListingCanceled
			m.store.putListing(listing)
			m.store.unlock(listing.Asset)
			o.emit(event.Event{
				Type:          event.ListingCanceledEvent,
				Ref:           listing.Slug(),
				Asset:         listing.Asset,
				PaymentMethod: listing.PaymentMethod,
				From:          listing.Seller,
			})
			return nil
		}
	}
	return fmt.Errorf("%w: lock %s has no active listing", ErrAssetAlreadyListed, ref)
}

// GetTokenBuyOffers returns every offer ever made on asset, in creation order.
func (m *Market) GetTokenBuyOffers(asset entity.AssetId) []entity.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()

	offers := make([]entity.Offer, len(m.store.offers[asset]))
	copy(offers, m.store.offers[asset])

	return offers
}

func (m *Market) GetOffer(asset entity.AssetId, offerId uint64) (entity.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offer, ok := m.store.offer(asset, offerId)
	if !ok {
		return entity.Offer{}, newError("getOffer", ErrOfferNotFound)
	}

	return offer, nil
}
