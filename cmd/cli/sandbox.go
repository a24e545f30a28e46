package main

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	sdi "github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"time"
)

const (
	nftContract = "0xnft"
	creator     = "creator"
	seller      = "seller"
	alice       = "alice"
	bob         = "bob"
)

// sandbox is an in-memory market whose clock only moves when told to.
type sandbox struct {
	container *di.Container
	market    *market.Market
	now       time.Time
}

func newSandbox() (*sandbox, error) {
	s := &sandbox{now: time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)}

	container, err := di.NewContainer(sdi.Def{
		Name:  "clock",
		Scope: sdi.App,
		Build: func(ctn sdi.Container) (interface{}, error) {
			return market.Clock(func() time.Time { return s.now }), nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.container = container
	s.market, err = container.SafeGetMarket()
	if err != nil {
		return nil, err
	}

	custody := s.market.Custody()
	registry := container.GetRegistry()
	registry.SetRoyalty(nftContract, entity.Royalty{Receiver: creator, RateBps: 500})
	for id := uint64(1); id <= 2; id++ {
		if err := registry.Mint(s.asset(id), seller); err != nil {
			return nil, err
		}
	}
	for _, account := range []string{seller, alice, bob} {
		registry.SetApprovalForAll(account, custody, true)
		container.GetBank().Mint(account, 1000)
		for _, token := range s.market.GetSupportedTokens() {
			if token.Method.IsNative() {
				continue
			}
			container.GetTokens().Mint(token.Method.Token, account, 1000)
			container.GetTokens().Approve(token.Method.Token, account, custody, 1000)
		}
	}

	zap.L().With(zap.String("custody", custody), zap.Uint64("feeRate", s.market.FeeRate())).Debug("Sandbox: Ready")

	return s, nil
}

func (s *sandbox) asset(id uint64) entity.AssetId {
	return entity.NewAssetId(nftContract, id)
}

func (s *sandbox) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *sandbox) owner(id uint64) string {
	owner, err := s.container.GetRegistry().OwnerOf(s.asset(id))
	if err != nil {
		return ""
	}
	return owner
}

func (s *sandbox) printBalances() {
	native := entity.NativeToken()
	for _, account := range []string{seller, alice, bob, creator, s.market.FeeRecipient(), s.market.Custody()} {
		fmt.Printf("  %-12s %s %s\n", account, entity.FormatAmount(s.container.GetBank().BalanceOf(account), native.Decimals), native.Symbol)
	}
}
