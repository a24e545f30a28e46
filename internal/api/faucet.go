package api

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/gorilla/mux"
	"net/http"
)

// Faucet creates assets and balances out of thin air. It is only routed on development deployments.
type Faucet interface {
	MintAsset(asset entity.AssetId, owner string) error
	Fund(account string, method entity.PaymentMethod, amount uint64) error
}

type mintRequest struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Owner    string `json:"owner"`
}

type fundRequest struct {
	Account       string `json:"account"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        uint64 `json:"amount"`
}

// WithFaucet returns a copy of the server that also serves the /dev routes.
func (s Server) WithFaucet(f Faucet) Server {
	s.faucet = f
	return s
}

func (s Server) faucetRoutes(r *mux.Router) {
	r.HandleFunc("/dev/assets", s.handleMintAsset).Methods("POST")
	r.HandleFunc("/dev/funds", s.handleFund).Methods("POST")
}

func (s Server) handleMintAsset(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !readBody(w, r, &req) {
		return
	}
	if req.Contract == "" || req.Owner == "" {
		writeBadRequest(w, ErrInvalidBody)
		return
	}

	if err := s.faucet.MintAsset(entity.NewAssetId(req.Contract, req.TokenId), req.Owner); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleFund(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if !readBody(w, r, &req) {
		return
	}

	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Account == "" || req.Amount == 0 {
		writeBadRequest(w, ErrInvalidBody)
		return
	}

	if err := s.faucet.Fund(req.Account, method, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
