package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/gorilla/mux"
	"io"
	"net/http"
	"strconv"
	"time"
)

// AccountHeader carries the account an operation is performed as.
const AccountHeader = "X-Account"

var (
	ErrNoAccount    = errors.New("missing " + AccountHeader + " header")
	ErrInvalidBody  = errors.New("invalid request body")
	ErrInvalidParam = errors.New("invalid parameters")
)

// Operations is the state-changing surface of the settlement engine.
type Operations interface {
	ListItem(call market.Call, asset entity.AssetId, method entity.PaymentMethod, price uint64) (*entity.Receipt, error)
	BuyItem(call market.Call, listingId uint64) (*entity.Receipt, error)
	CancelListing(call market.Call, listingId uint64) (*entity.Receipt, error)

	StartAuction(call market.Call, p market.AuctionParams) (*entity.Receipt, error)
	Bid(call market.Call, auctionId uint64, amount uint64) (*entity.Receipt, error)
	DirectBuyAuction(call market.Call, auctionId uint64) (*entity.Receipt, error)
	EndAuction(call market.Call, auctionId uint64) (*entity.Receipt, error)
	CancelAuction(call market.Call, auctionId uint64) (*entity.Receipt, error)
	WithdrawBid(call market.Call, auctionId uint64) (*entity.Receipt, error)

	MakeOffer(call market.Call, asset entity.AssetId, method entity.PaymentMethod, price uint64, expireTime time.Time) (*entity.Receipt, error)
	AcceptOffer(call market.Call, asset entity.AssetId, offerId uint64) (*entity.Receipt, error)
	CancelOffer(call market.Call, asset entity.AssetId, offerId uint64) (*entity.Receipt, error)

	AddSupportedToken(call market.Call, token entity.SupportedToken) error
	RemoveSupportedToken(call market.Call, method entity.PaymentMethod) error
	SetFeeRate(call market.Call, rate uint64) error
	SetFeeRecipient(call market.Call, recipient string) error
}

// callRequest is embedded by every operation body. Value is the native amount attached to the call.
type callRequest struct {
	Value uint64 `json:"value"`
}

type listItemRequest struct {
	callRequest
	Contract      string `json:"contract"`
	TokenId       uint64 `json:"tokenId"`
	PaymentMethod string `json:"paymentMethod"`
	Price         uint64 `json:"price"`
}

type startAuctionRequest struct {
	callRequest
	Contract       string    `json:"contract"`
	TokenId        uint64    `json:"tokenId"`
	PaymentMethod  string    `json:"paymentMethod"`
	StartPrice     uint64    `json:"startPrice"`
	DirectBuyPrice uint64    `json:"directBuyPrice"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
}

type bidRequest struct {
	callRequest
	Amount uint64 `json:"amount"`
}

type makeOfferRequest struct {
	callRequest
	PaymentMethod string    `json:"paymentMethod"`
	Price         uint64    `json:"price"`
	ExpireTime    time.Time `json:"expireTime"`
}

type tokenRequest struct {
	callRequest
	Token    string `json:"token"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

type feeRateRequest struct {
	callRequest
	Rate uint64 `json:"rate"`
}

type feeRecipientRequest struct {
	callRequest
	Recipient string `json:"recipient"`
}

func (s Server) operationRoutes(r *mux.Router) {
	r.HandleFunc("/listings", s.handleListItem).Methods("POST")
	r.HandleFunc("/listings/{id:[0-9]+}/buy", s.handleBuyItem).Methods("POST")
	r.HandleFunc("/listings/{id:[0-9]+}/cancel", s.handleCancelListing).Methods("POST")

	r.HandleFunc("/auctions", s.handleStartAuction).Methods("POST")
	r.HandleFunc("/auctions/{id:[0-9]+}/bids", s.handleBid).Methods("POST")
	r.HandleFunc("/auctions/{id:[0-9]+}/buy", s.handleDirectBuy).Methods("POST")
	r.HandleFunc("/auctions/{id:[0-9]+}/end", s.handleEndAuction).Methods("POST")
	r.HandleFunc("/auctions/{id:[0-9]+}/cancel", s.handleCancelAuction).Methods("POST")
	r.HandleFunc("/auctions/{id:[0-9]+}/withdraw", s.handleWithdrawBid).Methods("POST")

	r.HandleFunc("/assets/{contractAddr}/{tokenId:[0-9]+}/offers", s.handleMakeOffer).Methods("POST")
	r.HandleFunc("/assets/{contractAddr}/{tokenId:[0-9]+}/offers/{offerId:[0-9]+}/accept", s.handleAcceptOffer).Methods("POST")
	r.HandleFunc("/assets/{contractAddr}/{tokenId:[0-9]+}/offers/{offerId:[0-9]+}/cancel", s.handleCancelOffer).Methods("POST")

	r.HandleFunc("/admin/tokens", s.handleAddToken).Methods("POST")
	r.HandleFunc("/admin/tokens/{token}", s.handleRemoveToken).Methods("DELETE")
	r.HandleFunc("/admin/fee-rate", s.handleSetFeeRate).Methods("PUT")
	r.HandleFunc("/admin/fee-recipient", s.handleSetFeeRecipient).Methods("PUT")
}

func (s Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	var req listItemRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return s.ops.ListItem(call, entity.NewAssetId(req.Contract, req.TokenId), method, req.Price)
	})
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.BuyItem)
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.CancelListing)
}

func (s Server) handleStartAuction(w http.ResponseWriter, r *http.Request) {
	var req startAuctionRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return s.ops.StartAuction(call, market.AuctionParams{
			Asset:          entity.NewAssetId(req.Contract, req.TokenId),
			PaymentMethod:  method,
			DirectBuyPrice: req.DirectBuyPrice,
			StartPrice:     req.StartPrice,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
		})
	})
}

func (s Server) handleBid(w http.ResponseWriter, r *http.Request) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req bidRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return s.ops.Bid(call, id, req.Amount)
	})
}

func (s Server) handleDirectBuy(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.DirectBuyAuction)
}

func (s Server) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.EndAuction)
}

func (s Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.CancelAuction)
}

func (s Server) handleWithdrawBid(w http.ResponseWriter, r *http.Request) {
	s.onRecord(w, r, s.ops.WithdrawBid)
}

func (s Server) handleMakeOffer(w http.ResponseWriter, r *http.Request) {
	asset, err := getAssetId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req makeOfferRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return s.ops.MakeOffer(call, asset, method, req.Price, req.ExpireTime)
	})
}

func (s Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.onOffer(w, r, s.ops.AcceptOffer)
}

func (s Server) handleCancelOffer(w http.ResponseWriter, r *http.Request) {
	s.onOffer(w, r, s.ops.CancelOffer)
}

func (s Server) handleAddToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}
	if req.Token == "" || req.Symbol == "" {
		writeBadRequest(w, ErrInvalidBody)
		return
	}

	writeAdmin(w, s.ops.AddSupportedToken(call, entity.SupportedToken{
		Method:   entity.Token(req.Token),
		Symbol:   req.Symbol,
		Decimals: req.Decimals,
	}))
}

func (s Server) handleRemoveToken(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	call, ok := readCall(w, r, nil, &req)
	if !ok {
		return
	}

	writeAdmin(w, s.ops.RemoveSupportedToken(call, entity.Token(mux.Vars(r)["token"])))
}

func (s Server) handleSetFeeRate(w http.ResponseWriter, r *http.Request) {
	var req feeRateRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	writeAdmin(w, s.ops.SetFeeRate(call, req.Rate))
}

func (s Server) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	var req feeRecipientRequest
	call, ok := readCall(w, r, &req, &req.callRequest)
	if !ok {
		return
	}

	writeAdmin(w, s.ops.SetFeeRecipient(call, req.Recipient))
}

// onRecord handles the operations addressed only by a listing or auction id.
func (s Server) onRecord(w http.ResponseWriter, r *http.Request, op func(market.Call, uint64) (*entity.Receipt, error)) {
	id, err := getId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req callRequest
	call, ok := readCall(w, r, nil, &req)
	if !ok {
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return op(call, id)
	})
}

func (s Server) onOffer(w http.ResponseWriter, r *http.Request, op func(market.Call, entity.AssetId, uint64) (*entity.Receipt, error)) {
	asset, err := getAssetId(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	offerId, err := strconv.ParseUint(mux.Vars(r)["offerId"], 10, 64)
	if err != nil {
		writeBadRequest(w, fmt.Errorf("%w: offer id", ErrInvalidParam))
		return
	}

	var req callRequest
	call, ok := readCall(w, r, nil, &req)
	if !ok {
		return
	}

	writeReceipt(w, func() (*entity.Receipt, error) {
		return op(call, asset, offerId)
	})
}

// readCall decodes the body into dst, or into base alone when dst is nil, and builds the Call. It writes the error response itself and reports whether the handler should go on.
func readCall(w http.ResponseWriter, r *http.Request, dst interface{}, base *callRequest) (market.Call, bool) {
	sender := r.Header.Get(AccountHeader)
	if sender == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrNoAccount.Error()})
		return market.Call{}, false
	}

	if dst == nil {
		dst = base
	}
	if !readBody(w, r, dst) {
		return market.Call{}, false
	}

	return market.Call{Sender: sender, Value: base.Value}, true
}

// readBody decodes an optional JSON body into dst.
func readBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return false
	}

	return true
}

func parseMethod(s string) (entity.PaymentMethod, error) {
	if s == "" {
		return entity.Native, nil
	}
	return entity.ParsePaymentMethod(s)
}

func writeReceipt(w http.ResponseWriter, op func() (*entity.Receipt, error)) {
	receipt, err := op()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func writeAdmin(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
