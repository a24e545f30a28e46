package registry

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
	"sync"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrAssetExists   = errors.New("asset already exists")
	ErrNotOwner      = errors.New("not the asset owner")
	ErrNotApproved   = errors.New("not approved for transfer")
)

// Registry is the asset ownership surface the marketplace consumes.
type Registry interface {
	OwnerOf(asset entity.AssetId) (string, error)
	IsApprovedForTransfer(asset entity.AssetId, spender string) bool
	Transfer(asset entity.AssetId, from, to string) error
	RoyaltyInfo(asset entity.AssetId) (*entity.Royalty, error)
}

type operatorKey struct {
	owner    string
	operator string
}

// MemoryRegistry is an in-memory ZRC6 style registry. Transfers are made by a single operator, the marketplace
// custody account, which needs a token approval or operator approval unless it owns the asset itself.
type MemoryRegistry struct {
	mu        sync.RWMutex
	journal   journal.Journal
	operator  string
	owners    map[entity.AssetId]string
	approvals map[entity.AssetId]string
	operators map[operatorKey]bool
	royalties map[string]entity.Royalty
	overrides map[entity.AssetId]entity.Royalty
}

func NewMemoryRegistry(operator string) *MemoryRegistry {
	return &MemoryRegistry{
		operator:  operator,
		owners:    make(map[entity.AssetId]string),
		approvals: make(map[entity.AssetId]string),
		operators: make(map[operatorKey]bool),
		royalties: make(map[string]entity.Royalty),
		overrides: make(map[entity.AssetId]entity.Royalty),
	}
}

func (r *MemoryRegistry) Mint(asset entity.AssetId, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[asset]; ok {
		return fmt.Errorf("%w: %s", ErrAssetExists, asset)
	}
	r.setOwner(asset, owner)

	return nil
}

// Approve grants spender a single-token approval, cleared on the next transfer.
func (r *MemoryRegistry) Approve(owner string, asset entity.AssetId, spender string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.owners[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if current != owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, asset)
	}
	r.setApproval(asset, spender)

	return nil
}

func (r *MemoryRegistry) SetApprovalForAll(owner, operator string, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := operatorKey{owner, operator}
	prev := r.operators[key]
	r.journal.Record(func() { r.operators[key] = prev })
	r.operators[key] = approved
}

// SetRoyalty configures the collection-wide royalty for contract.
func (r *MemoryRegistry) SetRoyalty(contract string, royalty entity.Royalty) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.royalties[entity.NewAssetId(contract, 0).Contract] = royalty
}

// SetTokenRoyalty overrides the collection royalty for a single asset.
func (r *MemoryRegistry) SetTokenRoyalty(asset entity.AssetId, royalty entity.Royalty) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides[asset] = royalty
}

func (r *MemoryRegistry) OwnerOf(asset entity.AssetId) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[asset]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}

	return owner, nil
}

func (r *MemoryRegistry) IsApprovedForTransfer(asset entity.AssetId, spender string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.isApproved(asset, spender)
}

func (r *MemoryRegistry) Transfer(asset entity.AssetId, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if owner != from {
		return fmt.Errorf("%w: %s is owned by %s, not %s", ErrNotOwner, asset, owner, from)
	}
	if !r.isApproved(asset, r.operator) {
		return fmt.Errorf("%w: %s", ErrNotApproved, asset)
	}

	r.setApproval(asset, "")
	r.setOwner(asset, to)

	return nil
}

func (r *MemoryRegistry) RoyaltyInfo(asset entity.AssetId) (*entity.Royalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.owners[asset]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if royalty, ok := r.overrides[asset]; ok {
		return &royalty, nil
	}
	if royalty, ok := r.royalties[asset.Contract]; ok {
		return &royalty, nil
	}

	return nil, nil
}

func (r *MemoryRegistry) isApproved(asset entity.AssetId, spender string) bool {
	owner, ok := r.owners[asset]
	if !ok {
		return false
	}

	return owner == spender || r.approvals[asset] == spender || r.operators[operatorKey{owner, spender}]
}

func (r *MemoryRegistry) setOwner(asset entity.AssetId, owner string) {
	prev, existed := r.owners[asset]
	r.journal.Record(func() {
		if existed {
			r.owners[asset] = prev
		} else {
			delete(r.owners, asset)
		}
	})
	r.owners[asset] = owner
}

func (r *MemoryRegistry) setApproval(asset entity.AssetId, spender string) {
	prev, existed := r.approvals[asset]
	r.journal.Record(func() {
		if existed {
			r.approvals[asset] = prev
		} else {
			delete(r.approvals, asset)
		}
	})
	if spender == "" {
		delete(r.approvals, asset)
		return
	}
	r.approvals[asset] = spender
}

func (r *MemoryRegistry) Snapshot() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.journal.Snapshot()
}

func (r *MemoryRegistry) RevertTo(snapshot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.journal.RevertTo(snapshot)
}

func (r *MemoryRegistry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.journal.Commit()
}
