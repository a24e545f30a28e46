package repository

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
	"sort"
	"sync"
)

var (
	ErrActionNotFound = errors.New("marketplace action not found")
)

type ActionRepository interface {
	Save(action entity.MarketplaceAction) error
	GetActionsForAsset(asset entity.AssetId) ([]entity.MarketplaceAction, error)
	GetActionByReceipt(receiptId string) (*entity.MarketplaceAction, error)
}

type actionRepository struct {
	elastic elastic_search.Index
}

func NewActionRepository(elastic elastic_search.Index) ActionRepository {
	return actionRepository{elastic}
}

func (r actionRepository) Save(action entity.MarketplaceAction) error {
	r.elastic.AddIndexRequest(elastic_search.MarketplaceActionIndex.Get(), action, elastic_search.MarketplaceAction)
	r.elastic.BatchPersist()

	return nil
}

func (r actionRepository) GetActionsForAsset(asset entity.AssetId) ([]entity.MarketplaceAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", asset.Contract),
		elastic.NewTermQuery("tokenId", asset.TokenId),
	)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	results, err := search(ctx, r.elastic.GetClient().
		Search(elastic_search.MarketplaceActionIndex.Get()).
		Query(query).
		Sort("time", true).
		Size(1000))

	actions, err := r.findMany(results, err)
	if err != nil {
		return nil, err
	}

	// Requests not yet persisted are not searchable.
	seen := make(map[string]bool, len(actions))
	for _, action := range actions {
		seen[action.Slug()] = true
	}
	for _, e := range r.elastic.GetEntitiesByIndex(elastic_search.MarketplaceActionIndex.Get()) {
		action := e.(entity.MarketplaceAction)
		if action.Asset() == asset && !seen[action.Slug()] {
			actions = append(actions, action)
		}
	}
	sortActions(actions)

	return actions, nil
}

func (r actionRepository) GetActionByReceipt(receiptId string) (*entity.MarketplaceAction, error) {
	for _, e := range r.elastic.GetEntitiesByIndex(elastic_search.MarketplaceActionIndex.Get()) {
		if action := e.(entity.MarketplaceAction); action.ReceiptId == receiptId {
			return &action, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	results, err := search(ctx, r.elastic.GetClient().
		Search(elastic_search.MarketplaceActionIndex.Get()).
		Query(elastic.NewTermQuery("receiptId", receiptId)).
		Size(1))

	return r.findOne(results, err)
}

func (r actionRepository) findOne(results *elastic.SearchResult, err error) (*entity.MarketplaceAction, error) {
	if err != nil {
		return nil, err
	}

	if len(results.Hits.Hits) == 0 {
		return nil, ErrActionNotFound
	}

	var action entity.MarketplaceAction
	hit := results.Hits.Hits[0]
	if err = json.Unmarshal(hit.Source, &action); err != nil {
		return nil, err
	}

	return &action, nil
}

func (r actionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketplaceAction, error) {
	actions := make([]entity.MarketplaceAction, 0)

	if err != nil {
		return actions, err
	}

	for _, hit := range results.Hits.Hits {
		var action entity.MarketplaceAction
		if err := json.Unmarshal(hit.Source, &action); err != nil {
			zap.L().With(zap.Error(err), zap.String("id", hit.Id)).Error("ActionRepository: Failed to unmarshal action")
			continue
		}
		actions = append(actions, action)
	}

	return actions, nil
}

type memoryActionRepository struct {
	mu      sync.RWMutex
	actions []entity.MarketplaceAction
}

// NewMemoryActionRepository keeps action history in process, for running without Elasticsearch.
func NewMemoryActionRepository() ActionRepository {
	return &memoryActionRepository{actions: make([]entity.MarketplaceAction, 0)}
}

func (r *memoryActionRepository) Save(action entity.MarketplaceAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx, existing := range r.actions {
		if existing.Slug() == action.Slug() {
			r.actions[idx] = action
			return nil
		}
	}
	r.actions = append(r.actions, action)

	return nil
}

func (r *memoryActionRepository) GetActionsForAsset(asset entity.AssetId) ([]entity.MarketplaceAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]entity.MarketplaceAction, 0)
	for _, action := range r.actions {
		if action.Asset() == asset {
			actions = append(actions, action)
		}
	}
	sortActions(actions)

	return actions, nil
}

func (r *memoryActionRepository) GetActionByReceipt(receiptId string) (*entity.MarketplaceAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, action := range r.actions {
		if action.ReceiptId == receiptId {
			return &action, nil
		}
	}

	return nil, ErrActionNotFound
}

func sortActions(actions []entity.MarketplaceAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Time.Before(actions[j].Time)
	})
}
