package daemon

import (
	"context"
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"go.uber.org/zap"
	"time"
)

// AuctionCloser is the part of the market the keeper drives.
type AuctionCloser interface {
	GetAuctions() []entity.Auction
	GetAuctionStatus(id uint64) (entity.AuctionStatus, error)
	EndAuction(call market.Call, auctionId uint64) (*entity.Receipt, error)
}

// Keeper ends every auction whose bidding window has passed. Ending is permissionless, so the keeper
// acts from its own account.
type Keeper struct {
	market   AuctionCloser
	account  string
	interval time.Duration
	persist  func()
}

func NewKeeper(market AuctionCloser, account string, interval time.Duration, persist func()) *Keeper {
	if persist == nil {
		persist = func() {}
	}
	return &Keeper{market, account, interval, persist}
}

// Run ticks until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) {
	zap.L().With(zap.String("account", k.account), zap.Duration("interval", k.interval)).Info("Keeper: Starting")

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Keeper: Stopped")
			return
		case <-ticker.C:
			k.Tick()
		}
	}
}

// Tick ends all closable auctions and returns how many were ended.
func (k *Keeper) Tick() int {
	ended := 0
	for _, auction := range k.market.GetAuctions() {
		status, err := k.market.GetAuctionStatus(auction.Id)
		if err != nil || status != entity.AuctionClosable {
			continue
		}

		receipt, err := k.market.EndAuction(market.Call{Sender: k.account}, auction.Id)
		if err != nil {
			// Another caller may have ended it between the status read and the call.
			if errors.Is(err, market.ErrAuctionNotOpen) {
				continue
			}
			zap.L().With(zap.Uint64("auctionId", auction.Id), zap.Error(err)).Error("Keeper: Failed to end auction")
			continue
		}

		zap.L().With(
			zap.Uint64("auctionId", auction.Id),
			zap.String("receiptId", receipt.Id),
		).Info("Keeper: Ended auction")
		ended++
	}

	if ended != 0 {
		k.persist()
	}

	return ended
}
