package market

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"time"
)

type AuctionParams struct {
	Asset          entity.AssetId
	PaymentMethod  entity.PaymentMethod
	DirectBuyPrice uint64
	StartPrice     uint64
	StartTime      time.Time
	EndTime        time.Time
}

// StartAuction takes custody of the asset and opens a timed ascending auction.
func (m *Market) StartAuction(call Call, p AuctionParams) (*entity.Receipt, error) {
	return m.exec("startAuction", call, func(o *op) error {
		if !p.StartTime.Before(p.EndTime) {
			return ErrInvalidAuctionPeriod
		}
		if p.StartPrice == 0 {
			return ErrInvalidStartPrice
		}
		if p.DirectBuyPrice < p.StartPrice {
			return ErrInvalidDirectBuyPrice
		}
		if err := m.checkListable(o, p.Asset, p.PaymentMethod); err != nil {
			return err
		}

		auction := m.store.addAuction(entity.Auction{
			Asset:          p.Asset,
			Seller:         o.call.Sender,
			PaymentMethod:  p.PaymentMethod,
			DirectBuyPrice: p.DirectBuyPrice,
			StartPrice:     p.StartPrice,
			StartTime:      p.StartTime,
			EndTime:        p.EndTime,
			Status:         entity.AuctionOpen,
		})
		m.store.lock(p.Asset, auction.Slug())

		if err := m.moveAsset(p.Asset, auction.Seller, m.Custody()); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId = auction.Slug(), auction.Id
		o.emit(event.Event{
			Type:          event.AuctionStartedEvent,
			Ref:           auction.Slug(),
			Asset:         p.Asset,
			PaymentMethod: p.PaymentMethod,
			From:          auction.Seller,
			Amount:        p.StartPrice,
		})

		return nil
	})
}

// Bid adds amount to the caller's escrow for the auction. The caller becomes highest bidder once their
// cumulative escrow exceeds the current highest bid. Outbid funds stay in escrow until withdrawn.
func (m *Market) Bid(call Call, auctionId uint64, amount uint64) (*entity.Receipt, error) {
	return m.exec("bid", call, func(o *op) error {
		auction, ok := m.store.auction(auctionId)
		if !ok {
			return ErrAuctionNotFound
		}
		if !auction.AcceptsBids(o.now) {
			return fmt.Errorf("%w: %s", ErrAuctionNotOpen, auction.EffectiveStatus(o.now))
		}

		bidder := o.call.Sender
		if bidder == auction.Seller {
			return ErrSellerCannotBuy
		}
		if bidder == auction.HighestBidder {
			return ErrAlreadyHighestBid
		}
		if amount == 0 {
			return ErrInvalidBidAmount
		}

		total, err := m.deposit(o, auction, amount)
		if err != nil {
			return err
		}
		if total < auction.StartPrice {
			return fmt.Errorf("%w: %d < %d", ErrBidBelowStartPrice, total, auction.StartPrice)
		}
		if total > auction.HighestBid {
			auction.HighestBid = total
			auction.HighestBidder = bidder
			m.store.putAuction(auction)
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = auction.Slug(), auction.Id, total
		o.emit(event.Event{
			Type:          event.BidPlacedEvent,
			Ref:           auction.Slug(),
			Asset:         auction.Asset,
			PaymentMethod: auction.PaymentMethod,
			From:          bidder,
			Amount:        total,
		})

		return nil
	})
}

// DirectBuyAuction buys the asset immediately at the auction's direct buy price. Bids stay withdrawable.
func (m *Market) DirectBuyAuction(call Call, auctionId uint64) (*entity.Receipt, error) {
	return m.exec("directBuyAuction", call, func(o *op) error {
		auction, ok := m.store.auction(auctionId)
		if !ok {
			return ErrAuctionNotFound
		}
		if !auction.AcceptsBids(o.now) {
			return fmt.Errorf("%w: %s", ErrAuctionNotOpen, auction.EffectiveStatus(o.now))
		}

		buyer := o.call.Sender
		if buyer == auction.Seller {
			return ErrSellerCannotBuy
		}

		auction.Status = entity.AuctionDirectBuy
		auction.Winner = buyer
		m.store.putAuction(auction)
		m.store.unlock(auction.Asset)

		if err := m.collect(o, buyer, auction.PaymentMethod, auction.DirectBuyPrice); err != nil {
			return err
		}
		if err := m.settle(o, auction.Asset, auction.PaymentMethod, auction.DirectBuyPrice, auction.Seller, buyer); err != nil {
			return err
		}
		if err := m.moveAsset(auction.Asset, m.Custody(), buyer); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = auction.Slug(), auction.Id, auction.DirectBuyPrice
		o.emit(event.Event{
			Type:          event.AuctionDirectBuyEvent,
			Ref:           auction.Slug(),
			Asset:         auction.Asset,
			PaymentMethod: auction.PaymentMethod,
			From:          auction.Seller,
			To:            buyer,
			Amount:        auction.DirectBuyPrice,
			Settlement:    o.receipt.Settlement,
		})

		return nil
	})
}

// EndAuction closes an auction after its window. The highest bid is settled from escrow, or the asset
// goes back to the seller when nobody bid. Anyone may call it.
func (m *Market) EndAuction(call Call, auctionId uint64) (*entity.Receipt, error) {
	return m.exec("endAuction", call, func(o *op) error {
		auction, ok := m.store.auction(auctionId)
		if !ok {
			return ErrAuctionNotFound
		}
		if auction.IsTerminal() {
			return fmt.Errorf("%w: %s", ErrAuctionNotOpen, auction.Status)
		}
		if !o.now.After(auction.EndTime) {
			return ErrAuctionPeriodNotEnded
		}

		auction.Status = entity.AuctionEnded
		auction.Winner = auction.HighestBidder
		m.store.putAuction(auction)
		m.store.unlock(auction.Asset)

		o.receipt.Ref, o.receipt.RecordId = auction.Slug(), auction.Id
		e := event.Event{
			Type:          event.AuctionEndedEvent,
			Ref:           auction.Slug(),
			Asset:         auction.Asset,
			PaymentMethod: auction.PaymentMethod,
			From:          auction.Seller,
		}

		if !auction.HasBid() {
			if err := m.moveAsset(auction.Asset, m.Custody(), auction.Seller); err != nil {
				return err
			}
			e.To = auction.Seller
			o.emit(e)
			return nil
		}

		price, err := m.escrow.Consume(auction.Id, auction.HighestBidder)
		if err != nil {
			return err
		}
		if err := m.settle(o, auction.Asset, auction.PaymentMethod, price, auction.Seller, auction.HighestBidder); err != nil {
			return err
		}
		if err := m.moveAsset(auction.Asset, m.Custody(), auction.HighestBidder); err != nil {
			return err
		}

		o.receipt.Amount = price
		e.To, e.Amount, e.Settlement = auction.HighestBidder, price, o.receipt.Settlement
		o.emit(e)

		return nil
	})
}

// CancelAuction lets the seller abort an auction that is not terminal yet, whatever the time window.
func (m *Market) CancelAuction(call Call, auctionId uint64) (*entity.Receipt, error) {
	return m.exec("cancelAuction", call, func(o *op) error {
		auction, ok := m.store.auction(auctionId)
		if !ok {
			return ErrAuctionNotFound
		}
		if auction.Seller != o.call.Sender {
			return ErrOnlySeller
		}
		if auction.Status != entity.AuctionOpen {
			return fmt.Errorf("%w: %s", ErrCancelImpossible, auction.Status)
		}

		auction.Status = entity.AuctionCanceled
		m.store.putAuction(auction)
		m.store.unlock(auction.Asset)

		if err := m.moveAsset(auction.Asset, m.Custody(), auction.Seller); err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId = auction.Slug(), auction.Id
		o.emit(event.Event{
			Type:          event.AuctionCanceledEvent,
			Ref:           auction.Slug(),
			Asset:         auction.Asset,
			PaymentMethod: auction.PaymentMethod,
			From:          auction.Seller,
		})

		return nil
	})
}

// WithdrawBid refunds the caller's escrow. The leader of an open auction cannot withdraw.
func (m *Market) WithdrawBid(call Call, auctionId uint64) (*entity.Receipt, error) {
	return m.exec("withdrawBid", call, func(o *op) error {
		auction, ok := m.store.auction(auctionId)
		if !ok {
			return ErrAuctionNotFound
		}

		bidder := o.call.Sender
		if m.escrow.BalanceOf(auction.Id, bidder) == 0 {
			return fmt.Errorf("%w: %w", ErrHasNoBid, ErrNoEscrowBalance)
		}
		if bidder == auction.HighestBidder && auction.Status == entity.AuctionOpen {
			return ErrIsHighestBidder
		}

		amount, err := m.escrow.Refund(auction.Id, bidder, auction.PaymentMethod)
		if err != nil {
			return err
		}

		o.receipt.Ref, o.receipt.RecordId, o.receipt.Amount = auction.Slug(), auction.Id, amount
		o.emit(event.Event{
			Type:          event.BidWithdrawnEvent,
			Ref:           auction.Slug(),
			Asset:         auction.Asset,
			PaymentMethod: auction.PaymentMethod,
			To:            bidder,
			Amount:        amount,
		})

		return nil
	})
}

func (m *Market) GetAuctions() []entity.Auction {
	m.mu.Lock()
	defer m.mu.Unlock()

	auctions := make([]entity.Auction, len(m.store.auctions))
	copy(auctions, m.store.auctions)

	return auctions
}

func (m *Market) GetAuction(id uint64) (entity.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, ok := m.store.auction(id)
	if !ok {
		return entity.Auction{}, newError("getAuction", ErrAuctionNotFound)
	}

	return auction, nil
}

// GetAuctionStatus returns the time-aware status: open, pending, closable or a terminal status.
func (m *Market) GetAuctionStatus(id uint64) (entity.AuctionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, ok := m.store.auction(id)
	if !ok {
		return "", newError("getAuctionStatus", ErrAuctionNotFound)
	}

	return auction.EffectiveStatus(m.clock()), nil
}

func (m *Market) GetUserBidAmount(auctionId uint64, account string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.escrow.BalanceOf(auctionId, account)
}

// GetBids lists every escrow entry of the auction, zeroed ones included.
func (m *Market) GetBids(auctionId uint64) []entity.EscrowEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.escrow.Entries(auctionId)
}
