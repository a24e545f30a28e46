package market

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/journal"
)

// store holds every listing, auction and offer. Records are addressed by integer id, never by pointer,
// and every write is journaled so a failed operation leaves no trace.
type store struct {
	journal  journal.Journal
	listings []entity.Listing
	auctions []entity.Auction
	offers   map[entity.AssetId][]entity.Offer
	locks    map[entity.AssetId]string
}

func newStore() *store {
	return &store{
		listings: make([]entity.Listing, 0),
		auctions: make([]entity.Auction, 0),
		offers:   make(map[entity.AssetId][]entity.Offer),
		locks:    make(map[entity.AssetId]string),
	}
}

func (s *store) addListing(l entity.Listing) entity.Listing {
	l.Id = uint64(len(s.listings))
	s.listings = append(s.listings, l)
	s.journal.Record(func() { s.listings = s.listings[:l.Id] })

	return l
}

func (s *store) listing(id uint64) (entity.Listing, bool) {
	if id >= uint64(len(s.listings)) {
		return entity.Listing{}, false
	}
	return s.listings[id], true
}

func (s *store) putListing(l entity.Listing) {
	prev := s.listings[l.Id]
	s.journal.Record(func() { s.listings[l.Id] = prev })
	s.listings[l.Id] = l
}

func (s *store) addAuction(a entity.Auction) entity.Auction {
	a.Id = uint64(len(s.auctions))
	s.auctions = append(s.auctions, a)
	s.journal.Record(func() { s.auctions = s.auctions[:a.Id] })

	return a
}

func (s *store) auction(id uint64) (entity.Auction, bool) {
	if id >= uint64(len(s.auctions)) {
		return entity.Auction{}, false
	}
	return s.auctions[id], true
}

func (s *store) putAuction(a entity.Auction) {
	prev := s.auctions[a.Id]
	s.journal.Record(func() { s.auctions[a.Id] = prev })
	s.auctions[a.Id] = a
}

func (s *store) addOffer(o entity.Offer) entity.Offer {
	offers := s.offers[o.Asset]
	o.Id = uint64(len(offers))
	s.offers[o.Asset] = append(offers, o)
	s.journal.Record(func() {
		if o.Id == 0 {
			delete(s.offers, o.Asset)
			return
		}
		s.offers[o.Asset] = s.offers[o.Asset][:o.Id]
	})

	return o
}

func (s *store) offer(asset entity.AssetId, id uint64) (entity.Offer, bool) {
	offers := s.offers[asset]
	if id >= uint64(len(offers)) {
		return entity.Offer{}, false
	}
	return offers[id], true
}

func (s *store) putOffer(o entity.Offer) {
	offers := s.offers[o.Asset]
	prev := offers[o.Id]
	s.journal.Record(func() { s.offers[o.Asset][o.Id] = prev })
	offers[o.Id] = o
}

// lock marks asset as held by an active listing or open auction.
func (s *store) lock(asset entity.AssetId, ref string) {
	s.journal.Record(func() { delete(s.locks, asset) })
	s.locks[asset] = ref
}

func (s *store) unlock(asset entity.AssetId) {
	ref, ok := s.locks[asset]
	if !ok {
		return
	}
	s.journal.Record(func() { s.locks[asset] = ref })
	delete(s.locks, asset)
}

func (s *store) lockedBy(asset entity.AssetId) (string, bool) {
	ref, ok := s.locks[asset]
	return ref, ok
}

func (s *store) Snapshot() int {
	return s.journal.Snapshot()
}

func (s *store) RevertTo(snapshot int) {
	s.journal.RevertTo(snapshot)
}

func (s *store) Commit() {
	s.journal.Commit()
}
