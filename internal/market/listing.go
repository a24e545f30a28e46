package market

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
)

// ListItem offers asset for sale at a fixed price. The asset stays with the seller until it is bought.
func (m *Market) ListItem(call Call, asset entity.AssetId, method entity.PaymentMethod, price uint64) (*entity.Receipt, error) {
	return m.exec("listItem", call, func(o *op) error {
		if err := m.checkListable(o, asset, method); err != nil {
			return err
		}
		if price == 0 {
			return ErrInvalidPrice
		}

		listing := m.store.addListing(entity.Listing{
			Asset:         asset,
			Seller:        o.call.Sender,
			PaymentMethod: method,
			Price:         price,
			Status:        entity.ListingActive,
			CreatedAt:     o.now,
		})
		m.store.lock(asset, listing.Slug())

		o.receipt.Ref, o.receipt.RecordId = listing.Slug(), listing.Id
		o.emit(event.Event{
			Type:          event.ListingCreatedEvent,
			Ref:           listing.Slug(),
			Asset:         asset,
			PaymentMethod: method,
			From:          listing.Seller,
			Amount:        price,
		})

		return nil
	})
}

// BuyItem pays the listing price and takes the asset. The sale is settled in full or not at all.
func (m *Market) BuyItem(call Call, listingId uint64) (*entity.Receipt, error) {
	return m.exec("buyItem", call, func(o *op) error {
		listing, ok := m.store.listing(listingId)
		if !ok {
			return ErrListingNotFound
		}
		if !listing.IsActive() {
			return ErrListingNotActive
		}

		buyer := o.call.Sender
		if buyer == listing.Seller {
			return ErrSellerCannotBuy
		}

		owner, err := m.ownerOf(listing.Asset)
		if err != nil {
			return err
		}
		if owner != listing.Seller && owner != m.Custody() {
			return ErrSellerNoLongerOwner
		}
		if !m.assets.IsApprovedForTransfer(listing.Asset, m.Custody()) {
			return ErrItemNotApproved
		}

		listing.Status = entity.ListingSold
		listing.Buyer = buyer
		m.store.putListing(listing)
		m.store.unlock(listing.Asset)

		if err := m.collect(o, buyer, listing.PaymentMethod, listing.Price); err != nil {
			return err
		}
		if err := m.settle(o, listing.Asset, listing.PaymentMethod, listing.Price, listing.Seller, buyer); err != nil {
			return err
		}
		if err := m.moveAsset(listing.Asset, owner, buyer); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = listing.Slug(), listing.Id, listing.Price
		o.emit(event.Event{
			Type:          event.ItemSoldEvent,
			Ref:           listing.Slug(),
			Asset:         listing.Asset,
			PaymentMethod: listing.PaymentMethod,
			From:          listing.Seller,
			To:            buyer,
			Amount:        listing.Price,
			Settlement:    o.receipt.Settlement,
		})

		return nil
	})
}

// CancelListing withdraws an active listing. Custody is returned only if the engine holds the asset.
func (m *Market) CancelListing(call Call, listingId uint64) (*entity.Receipt, error) {
	return m.exec("cancelListing", call, func(o *op) error {
		listing, ok := m.store.listing(listingId)
		if !ok {
			return ErrListingNotFound
		}
		if listing.Seller != o.call.Sender {
			return ErrOnlySeller
		}
		if !listing.IsActive() {
			return ErrListingNotActive
		}

		listing.Status = entity.ListingCanceled
		m.store.putListing(listing)
		m.store.unlock(listing.Asset)

		if owner, err := m.assets.OwnerOf(listing.Asset); err == nil && owner == m.Custody() {
			if err := m.moveAsset(listing.Asset, m.Custody(), listing.Seller); err != nil {
				return err
			}
		}

		o.receipt.Ref, o.receipt.RecordId = listing.Slug(), listing.Id
		o.emit(event.Event{
			Type:          event.ListingCanceledEvent,
			Ref:           listing.Slug(),
			Asset:         listing.Asset,
			PaymentMethod: listing.PaymentMethod,
			From:          listing.Seller,
		})

		return nil
	})
}

func (m *Market) GetListings() []entity.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	listings := make([]entity.Listing, len(m.store.listings))
	copy(listings, m.store.listings)

	return listings
}

func (m *Market) GetListing(id uint64) (entity.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.store.listing(id)
	if !ok {
		return entity.Listing{}, newError("getListing", ErrListingNotFound)
	}

	return listing, nil
}
