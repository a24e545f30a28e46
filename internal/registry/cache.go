package registry

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"time"
)

type noRoyalty struct{}

// CachedRegistry memoises royalty lookups, which are read on every settlement but rarely change.
type CachedRegistry struct {
	Registry
	cache *cache.Cache
}

func NewCachedRegistry(inner Registry, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{inner, cache.New(ttl, 2*ttl)}
}

func (r *CachedRegistry) RoyaltyInfo(asset entity.AssetId) (*entity.Royalty, error) {
	if cached, found := r.cache.Get(asset.Slug()); found {
		if royalty, ok := cached.(entity.Royalty); ok {
			return &royalty, nil
		}
		return nil, nil
	}

	royalty, err := r.Registry.RoyaltyInfo(asset)
	if err != nil {
		return nil, err
	}

	if royalty == nil {
		r.cache.Set(asset.Slug(), noRoyalty{}, cache.DefaultExpiration)
		return nil, nil
	}

	zap.L().With(
		zap.String("asset", asset.String()),
		zap.String("receiver", royalty.Receiver),
		zap.Uint64("rateBps", royalty.RateBps),
	).Debug("Registry: Cached royalty")
	r.cache.Set(asset.Slug(), *royalty, cache.DefaultExpiration)

	return royalty, nil
}

// Forget drops a cached royalty so the next lookup reads the registry.
func (r *CachedRegistry) Forget(asset entity.AssetId) {
	r.cache.Delete(asset.Slug())
}
