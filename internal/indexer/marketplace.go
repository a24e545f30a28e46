package indexer

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/factory"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"go.uber.org/zap"
)

// MarketplaceIndexer records the history of every committed marketplace operation.
type MarketplaceIndexer interface {
	Subscribe(events *event.Manager)
	Index(e event.Event) error
}

type marketplaceIndexer struct {
	actionRepo repository.ActionRepository
}

func NewMarketplaceIndexer(actionRepo repository.ActionRepository) MarketplaceIndexer {
	return marketplaceIndexer{actionRepo}
}

func (i marketplaceIndexer) Subscribe(events *event.Manager) {
	events.AddEventListener(event.AllEvents, func(e event.Event) {
		_ = i.Index(e)
	})
}

func (i marketplaceIndexer) Index(e event.Event) error {
	for _, action := range factory.CreateMarketplaceActions(e) {
		i.logAction(action)

		if err := i.actionRepo.Save(action); err != nil {
			zap.L().With(
				zap.String("receiptId", e.ReceiptId),
				zap.String("action", string(action.Action)),
				zap.Error(err),
			).Error("MarketplaceIndexer: Failed to save action")
			return err
		}
	}

	return nil
}

func (i marketplaceIndexer) logAction(action entity.MarketplaceAction) {
	logger := zap.L().With(
		zap.String("receiptId", action.ReceiptId),
		zap.String("ref", action.Ref),
		zap.String("contractAddr", action.Contract),
		zap.Uint64("tokenId", action.TokenId),
	)

	switch action.Action {
	case entity.MarketplaceSaleAction:
		logger.With(
			zap.String("from", action.From),
			zap.String("to", action.To),
			zap.String("cost", action.Cost),
			zap.String("fee", action.Fee),
			zap.String("royalty", action.Royalty),
			zap.String("fungible", action.Fungible),
		).Info("Marketplace trade")
	case entity.MarketplaceListingAction:
		logger.With(zap.String("cost", action.Cost), zap.String("fungible", action.Fungible)).Info("Marketplace listing")
	case entity.MarketplaceDelistingAction:
		logger.Info("Marketplace delisting")
	default:
		logger.With(zap.String("action", string(action.Action))).Debug("Marketplace action")
	}
}
