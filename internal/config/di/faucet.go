package di

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/registry"
	"go.uber.org/zap"
)

// faucet mints assets and funds for development deployments. Everything it creates is approved for the
// custody account so it can be traded straight away.
type faucet struct {
	market   *market.Market
	registry *registry.MemoryRegistry
	bank     *ledger.Bank
	tokens   *ledger.Tokens
}

func (f faucet) MintAsset(asset entity.AssetId, owner string) error {
	err := f.market.Provision(func() error {
		if err := f.registry.Mint(asset, owner); err != nil {
			return err
		}
		f.registry.SetApprovalForAll(owner, f.market.Custody(), true)
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().With(zap.String("asset", asset.String()), zap.String("owner", owner)).Info("Faucet: Asset minted")
	return nil
}

func (f faucet) Fund(account string, method entity.PaymentMethod, amount uint64) error {
	err := f.market.Provision(func() error {
		if method.IsNative() {
			f.bank.Mint(account, amount)
			return nil
		}

		custody := f.market.Custody()
		f.tokens.Mint(method.Token, account, amount)
		f.tokens.Approve(method.Token, account, custody, f.tokens.Allowance(method.Token, account, custody)+amount)
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().With(zap.String("account", account), zap.String("method", method.String()), zap.Uint64("amount", amount)).
		Info("Faucet: Account funded")
	return nil
}
