package factory

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"strconv"
)

// CreateMarketplaceActions turns a committed event into its history documents. Sales also record the
// ownership transfer they caused.
func CreateMarketplaceActions(e event.Event) []entity.MarketplaceAction {
	switch e.Type {
	case event.ListingCreatedEvent:
		return []entity.MarketplaceAction{createAction(e, entity.MarketplaceListingAction)}
	case event.ListingCanceledEvent:
		return []entity.MarketplaceAction{createAction(e, entity.MarketplaceDelistingAction)}
	case event.AuctionStartedEvent:
		return []entity.MarketplaceAction{createAction(e, entity.AuctionStartAction)}
	case event.BidPlacedEvent:
		return []entity.MarketplaceAction{createAction(e, entity.AuctionBidAction)}
	case event.AuctionCanceledEvent:
		return []entity.MarketplaceAction{createAction(e, entity.AuctionCancelAction)}
	case event.BidWithdrawnEvent:
		return []entity.MarketplaceAction{createAction(e, entity.AuctionWithdrawAction)}
	case event.OfferMadeEvent:
		return []entity.MarketplaceAction{createAction(e, entity.OfferAction)}
	case event.OfferCanceledEvent:
		return []entity.MarketplaceAction{createAction(e, entity.OfferCancelAction)}
	case event.AuctionEndedEvent:
		if e.Settlement == nil {
			return []entity.MarketplaceAction{createAction(e, entity.AuctionUnsoldAction)}
		}
		return createSaleActions(e)
	case event.ItemSoldEvent, event.AuctionDirectBuyEvent, event.OfferAcceptedEvent:
		return createSaleActions(e)
	}

	return nil
}

func createSaleActions(e event.Event) []entity.MarketplaceAction {
	sale := createAction(e, entity.MarketplaceSaleAction)
	if e.Settlement != nil {
		sale.Fee = strconv.FormatUint(e.Settlement.Fee, 10)
		sale.Royalty = strconv.FormatUint(e.Settlement.Royalty, 10)
	}

	transfer := createAction(e, entity.TransferAction)
	transfer.Cost = ""

	return []entity.MarketplaceAction{sale, transfer}
}

func createAction(e event.Event, action entity.ActionType) entity.MarketplaceAction {
	return entity.MarketplaceAction{
		Contract:    e.Asset.Contract,
		TokenId:     e.Asset.TokenId,
		Ref:         e.Ref,
		ReceiptId:   e.ReceiptId,
		Action:      action,
		From:        e.From,
		To:          e.To,
		Marketplace: entity.MarketplaceName,
		Cost:        strconv.FormatUint(e.Amount, 10),
		Fungible:    e.PaymentMethod.String(),
		Time:        e.Time,
	}
}
