package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

var nft = entity.NewAssetId("0xCollection", 1)

func TestMemoryRegistry_TransferRequiresApproval(t *testing.T) {
	r := NewMemoryRegistry("market")
	assert.NoError(t, r.Mint(nft, "alice"))

	err := r.Transfer(nft, "alice", "bob")
	check.True(t, errors.Is(err, ErrNotApproved))

	assert.NoError(t, r.Approve("alice", nft, "market"))
	check.True(t, r.IsApprovedForTransfer(nft, "market"))
	assert.NoError(t, r.Transfer(nft, "alice", "bob"))

	owner, err := r.OwnerOf(nft)
	assert.NoError(t, err)
	check.Equal(t, "bob", owner)
	check.False(t, r.IsApprovedForTransfer(nft, "market"))
}

func TestMemoryRegistry_OperatorApproval(t *testing.T) {
	r := NewMemoryRegistry("market")
	assert.NoError(t, r.Mint(nft, "alice"))
	r.SetApprovalForAll("alice", "market", true)

	check.True(t, r.IsApprovedForTransfer(nft, "market"))
	assert.NoError(t, r.Transfer(nft, "alice", "market"))
	check.True(t, r.IsApprovedForTransfer(nft, "market"))
	assert.NoError(t, r.Transfer(nft, "market", "alice"))
}

func TestMemoryRegistry_TransferFromWrongOwner(t *testing.T) {
	r := NewMemoryRegistry("market")
	assert.NoError(t, r.Mint(nft, "alice"))
	r.SetApprovalForAll("alice", "market", true)

	err := r.Transfer(nft, "bob", "carol")
	check.True(t, errors.Is(err, ErrNotOwner))
}

func TestMemoryRegistry_UnknownAsset(t *testing.T) {
	r := NewMemoryRegistry("market")

	_, err := r.OwnerOf(nft)
	check.True(t, errors.Is(err, ErrAssetNotFound))
	check.False(t, r.IsApprovedForTransfer(nft, "market"))
}

func TestMemoryRegistry_RoyaltyOverride(t *testing.T) {
	r := NewMemoryRegistry("market")
	assert.NoError(t, r.Mint(nft, "alice"))
	r.SetRoyalty("0xcollection", entity.Royalty{Receiver: "creator", RateBps: 500})

	royalty, err := r.RoyaltyInfo(nft)
	assert.NoError(t, err)
	check.Equal(t, uint64(500), royalty.RateBps)

	r.SetTokenRoyalty(nft, entity.Royalty{Receiver: "artist", RateBps: 250})
	royalty, err = r.RoyaltyInfo(nft)
	assert.NoError(t, err)
	check.Equal(t, "artist", royalty.Receiver)
}

func TestMemoryRegistry_RevertTransfer(t *testing.T) {
	r := NewMemoryRegistry("market")
	assert.NoError(t, r.Mint(nft, "alice"))
	assert.NoError(t, r.Approve("alice", nft, "market"))
	r.Commit()

	snap := r.Snapshot()
	assert.NoError(t, r.Transfer(nft, "alice", "bob"))
	r.RevertTo(snap)

	owner, _ := r.OwnerOf(nft)
	check.Equal(t, "alice", owner)
	check.True(t, r.IsApprovedForTransfer(nft, "market"))
}

func TestCachedRegistry_RoyaltyIsCached(t *testing.T) {
	inner := NewMemoryRegistry("market")
	assert.NoError(t, inner.Mint(nft, "alice"))
	inner.SetRoyalty("0xcollection", entity.Royalty{Receiver: "creator", RateBps: 500})
	r := NewCachedRegistry(inner, time.Minute)

	royalty, err := r.RoyaltyInfo(nft)
	assert.NoError(t, err)
	check.Equal(t, uint64(500), royalty.RateBps)

	inner.SetRoyalty("0xcollection", entity.Royalty{Receiver: "creator", RateBps: 900})
	royalty, _ = r.RoyaltyInfo(nft)
	check.Equal(t, uint64(500), royalty.RateBps)

	r.Forget(nft)
	royalty, _ = r.RoyaltyInfo(nft)
	check.Equal(t, uint64(900), royalty.RateBps)
}

func TestCachedRegistry_NoRoyalty(t *testing.T) {
	inner := NewMemoryRegistry("market")
	assert.NoError(t, inner.Mint(nft, "alice"))
	r := NewCachedRegistry(inner, time.Minute)

	royalty, err := r.RoyaltyInfo(nft)
	assert.NoError(t, err)
	check.True(t, royalty == nil)

	royalty, err = r.RoyaltyInfo(nft)
	assert.NoError(t, err)
	check.True(t, royalty == nil)
}
