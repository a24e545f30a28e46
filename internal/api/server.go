package api

import (
	"encoding/json"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"time"
)

// Marketplace is the read-only query surface of the settlement engine.
type Marketplace interface {
	GetListings() []entity.Listing
	GetListing(id uint64) (entity.Listing, error)
	GetAuctions() []entity.Auction
	GetAuction(id uint64) (entity.Auction, error)
	GetAuctionStatus(id uint64) (entity.AuctionStatus, error)
	GetUserBidAmount(auctionId uint64, account string) uint64
	GetBids(auctionId uint64) []entity.EscrowEntry
	GetTokenBuyOffers(asset entity.AssetId) []entity.Offer
	GetSupportedTokens() []entity.SupportedToken
	GetSupportedToken(method entity.PaymentMethod) (entity.SupportedToken, bool)
	FeeRate() uint64
}

type Server struct {
	market     Marketplace
	ops        Operations
	faucet     Faucet
	actionRepo repository.ActionRepository
}

func NewServer(market Marketplace, ops Operations, actionRepo repository.ActionRepository) Server {
	return Server{market: market, ops: ops, actionRepo: actionRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/tokens", s.handleGetTokens).Methods("GET")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc("/listings/{id:[0-9]+}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/auctions", s.handleGetAuctions).Methods("GET")
	r.HandleFunc("/auctions/{id:[0-9]+}", s.handleGetAuction).Methods("GET")
	r.HandleFunc("/auctions/{id:[0-9]+}/status", s.handleGetAuctionStatus).Methods("GET")
	r.HandleFunc("/auctions/{id:[0-9]+}/bids", s.handleGetBids).Methods("GET")
	r.HandleFunc("/auctions/{id:[0-9]+}/bids/{account}", s.handleGetUserBid).Methods("GET")
	r.HandleFunc("/assets/{contractAddr}/{tokenId:[0-9]+}/offers", s.handleGetOffers).Methods("GET")
	r.HandleFunc("/assets/{contractAddr}/{tokenId:[0-9]+}/actions", s.handleGetActions).Methods("GET")
	s.operationRoutes(r)
	if s.faucet != nil {
		s.faucetRoutes(r)
	}
	r.NotFoundHandler = notFoundHandler()

	return r
}

type price struct {
	Amount  uint64 `json:"amount"`
	Display string `json:"display"`
	Symbol  string `json:"symbol"`
}

type listingView struct {
	entity.Listing
	DisplayPrice price `json:"displayPrice"`
}

type auctionView struct {
	entity.Auction
	EffectiveStatus entity.AuctionStatus `json:"effectiveStatus"`
	DisplayHighest  price                `json:"displayHighestBid"`
	DisplayStart    price                `json:"displayStartPrice"`
	DisplayDirect   price                `json:"displayDirectBuyPrice"`
}

type offerView struct {
	entity.Offer
	DisplayPrice price `json:"displayPrice"`
}

type tokensView struct {
	FeeRate uint64                  `json:"feeRate"`
	Tokens  []entity.SupportedToken `json:"tokens"`
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s Server) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tokensView{s.market.FeeRate(), s.market.GetSupportedTokens()})
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	listings := s.market.GetListings()
	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, s.listingView(l))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	listing, err := s.market.GetListing(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.listingView(listing))
}

func (s Server) handleGetAuctions(w http.ResponseWriter, r *http.Request) {
	auctions := s.market.GetAuctions()
	views := make([]auctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, s.auctionView(a))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	auction, err := s.market.GetAuction(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.auctionView(auction))
}

func (s Server) handleGetAuctionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	status, err := s.market.GetAuctionStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]entity.AuctionStatus{"status": status})
}

func (s Server) handleGetBids(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if _, err := s.market.GetAuction(id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.market.GetBids(id))
}

func (s Server) handleGetUserBid(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	account := mux.Vars(r)["account"]

	auction, err := s.market.GetAuction(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.price(auction.PaymentMethod, s.market.GetUserBidAmount(id, account)))
}

func (s Server) handleGetOffers(w http.ResponseWriter, r *http.Request) {
	asset, err := getAssetId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	offers := s.market.GetTokenBuyOffers(asset)
	views := make([]offerView, 0, len(offers))
	for _, o := range offers {
		views = append(views, offerView{o, s.price(o.PaymentMethod, o.Price)})
	}

	writeJSON(w, http.StatusOK, views)
}

func (s Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	asset, err := getAssetId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	actions, err := s.actionRepo.GetActionsForAsset(asset)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("asset", asset.String())).Warn("Actions not available")
		http.Error(w, "Actions not available", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, actions)
}

func (s Server) listingView(l entity.Listing) listingView {
	return listingView{l, s.price(l.PaymentMethod, l.Price)}
}

func (s Server) auctionView(a entity.Auction) auctionView {
	status, _ := s.market.GetAuctionStatus(a.Id)
	return auctionView{
		Auction:         a,
		EffectiveStatus: status,
		DisplayHighest:  s.price(a.PaymentMethod, a.HighestBid),
		DisplayStart:    s.price(a.PaymentMethod, a.StartPrice),
		DisplayDirect:   s.price(a.PaymentMethod, a.DirectBuyPrice),
	}
}

// price renders amount with the token's decimals. Tokens removed from the supported set fall back to base units.
func (s Server) price(method entity.PaymentMethod, amount uint64) price {
	token, ok := s.market.GetSupportedToken(method)
	if !ok {
		return price{amount, strconv.FormatUint(amount, 10), method.String()}
	}

	return price{amount, entity.FormatAmount(amount, token.Decimals), token.Symbol}
}

func getId(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id", ErrInvalidParam)
	}

	return id, nil
}

func getAssetId(r *http.Request) (entity.AssetId, error) {
	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		return entity.AssetId{}, fmt.Errorf("invalid token id: %w", err)
	}

	return entity.NewAssetId(mux.Vars(r)["contractAddr"], tokenId), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Api: Failed to encode response")
	}
}

var kindStatus = map[market.Kind]int{
	market.Authorization: http.StatusForbidden,
	market.StateConflict: http.StatusConflict,
	market.Validation:    http.StatusBadRequest,
	market.Funds:         http.StatusUnprocessableEntity,
	market.NotFound:      http.StatusNotFound,
	market.Internal:      http.StatusInternalServerError,
}

func writeError(w http.ResponseWriter, err error) {
	kind := market.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": string(kind)})
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
