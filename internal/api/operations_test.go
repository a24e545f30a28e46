package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func send(t *testing.T, h http.Handler, method, path, account string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if account != "" {
		req.Header.Set(api.AccountHeader, account)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}

	return rec.Code
}

func TestServer_BuyItem(t *testing.T) {
	h := newServer(t)

	var receipt entity.Receipt
	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/listings/0/buy", "alice", map[string]uint64{"value": 1_500_000_000_000}, &receipt))
	check.Equal(t, "buyItem", receipt.Operation)
	check.Equal(t, uint64(0), receipt.RecordId)
	assert.NotNil(t, receipt.Settlement)
	check.Equal(t, "alice", receipt.Settlement.Buyer)
	check.Equal(t, "seller", receipt.Settlement.Seller)
	check.Equal(t, uint64(1_500_000_000_000), receipt.Settlement.Price)

	var listing entity.Listing
	check.Equal(t, http.StatusOK, get(t, h, "/listings/0", &listing))
	check.Equal(t, entity.ListingSold, listing.Status)
}

func TestServer_StartAuctionAndBid(t *testing.T) {
	h := newServer(t)

	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/listings/0/cancel", "seller", nil, nil))

	var started entity.Receipt
	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/auctions", "seller", map[string]interface{}{
		"contract":       "0xnft",
		"tokenId":        1,
		"paymentMethod":  "native",
		"startPrice":     1_000_000_000_000,
		"directBuyPrice": 4_000_000_000_000,
		"startTime":      now.Add(-time.Minute),
		"endTime":        now.Add(time.Hour),
	}, &started))
	check.Equal(t, "startAuction", started.Operation)
	check.Equal(t, uint64(1), started.RecordId)

	var bid entity.Receipt
	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/auctions/1/bids", "alice", map[string]uint64{
		"amount": 1_000_000_000_000,
		"value":  1_000_000_000_000,
	}, &bid))
	check.Equal(t, "bid", bid.Operation)

	var auction entity.Auction
	check.Equal(t, http.StatusOK, get(t, h, "/auctions/1", &auction))
	check.Equal(t, "alice", auction.HighestBidder)
	check.Equal(t, uint64(1_000_000_000_000), auction.HighestBid)
}

func TestServer_AcceptOffer(t *testing.T) {
	h := newServer(t)

	var offers []entity.Offer
	check.Equal(t, http.StatusOK, get(t, h, "/assets/0xnft/1/offers", &offers))
	assert.Equal(t, 1, len(offers))

	var receipt entity.Receipt
	path := "/assets/0xnft/1/offers/" + strconv.FormatUint(offers[0].Id, 10) + "/accept"
	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, path, "seller", nil, &receipt))
	check.Equal(t, "acceptOffer", receipt.Operation)
	assert.NotNil(t, receipt.Settlement)
	check.Equal(t, "alice", receipt.Settlement.Buyer)
}

func TestServer_OperationErrors(t *testing.T) {
	h := newServer(t)

	cases := []struct {
		name    string
		method  string
		path    string
		account string
		body    interface{}
		status  int
		kind    string
	}{
		{"missing account", http.MethodPost, "/listings/0/buy", "", nil, http.StatusUnauthorized, ""},
		{"not the seller", http.MethodPost, "/listings/0/cancel", "bob", nil, http.StatusForbidden, "authorization"},
		{"wrong value", http.MethodPost, "/listings/0/buy", "alice", map[string]uint64{"value": 1}, http.StatusUnprocessableEntity, "funds"},
		{"unknown listing", http.MethodPost, "/listings/7/buy", "alice", nil, http.StatusNotFound, "not_found"},
		{"zero price offer", http.MethodPost, "/assets/0xnft/1/offers", "bob", map[string]interface{}{"price": 0, "expireTime": now.Add(time.Hour)}, http.StatusBadRequest, "validation"},
		{"overflowing id", http.MethodPost, "/auctions/99999999999999999999/end", "alice", nil, http.StatusBadRequest, ""},
		{"invalid body", http.MethodPost, "/auctions/0/bids", "alice", "not an object", http.StatusBadRequest, ""},
		{"admin only", http.MethodPut, "/admin/fee-rate", "alice", map[string]uint64{"rate": 30}, http.StatusForbidden, "authorization"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var failure map[string]string
			check.Equal(t, c.status, send(t, h, c.method, c.path, c.account, c.body, &failure))
			check.Equal(t, c.kind, failure["kind"])
		})
	}
}

func TestServer_CancelTwiceConflicts(t *testing.T) {
	h := newServer(t)

	check.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/listings/0/cancel", "seller", nil, nil))

	var failure map[string]string
	check.Equal(t, http.StatusConflict, send(t, h, http.MethodPost, "/listings/0/cancel", "seller", nil, &failure))
	check.Equal(t, "state_conflict", failure["kind"])
}

func TestServer_Admin(t *testing.T) {
	h := newServer(t)

	check.Equal(t, http.StatusNoContent, send(t, h, http.MethodPut, "/admin/fee-rate", "admin", map[string]uint64{"rate": 30}, nil))
	check.Equal(t, http.StatusNoContent, send(t, h, http.MethodPost, "/admin/tokens", "admin", map[string]interface{}{
		"token":    "0xEUR",
		"symbol":   "EUR",
		"decimals": 2,
	}, nil))
	check.Equal(t, http.StatusNoContent, send(t, h, http.MethodDelete, "/admin/tokens/0xusd", "admin", nil, nil))

	var tokens struct {
		FeeRate uint64                  `json:"feeRate"`
		Tokens  []entity.SupportedToken `json:"tokens"`
	}
	check.Equal(t, http.StatusOK, get(t, h, "/tokens", &tokens))
	check.Equal(t, uint64(30), tokens.FeeRate)
	assert.Equal(t, 2, len(tokens.Tokens))

	var failure map[string]string
	check.Equal(t, http.StatusBadRequest, send(t, h, http.MethodDelete, "/admin/tokens/0xusd", "admin", nil, &failure))
	check.Equal(t, "validation", failure["kind"])
}
