package di

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/daemon"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/escrow"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/notify"
	"github.com/ZilDuck/zilliqa-marketplace/internal/payment"
	"github.com/ZilDuck/zilliqa-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"time"
)

var Definitions = []di.Def{
	{
		Name:  "clock",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return market.Clock(time.Now), nil
		},
	},
	{
		Name:  "events",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
	},
	{
		Name:  "bank",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return ledger.NewBank(), nil
		},
	},
	{
		Name:  "tokens",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return ledger.NewTokens(), nil
		},
	},
	{
		Name:  "registry",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return registry.NewMemoryRegistry(config.Get().Custody), nil
		},
	},
	{
		Name:  "registry.cached",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			inner := ctn.Get("registry").(*registry.MemoryRegistry)
			return registry.NewCachedRegistry(inner, config.Get().RoyaltyCacheTtl), nil
		},
	},
	{
		Name:  "payment.router",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return payment.NewRouter(
				ctn.Get("bank").(*ledger.Bank),
				ctn.Get("tokens").(*ledger.Tokens),
				config.Get().Custody,
			), nil
		},
	},
	{
		Name:  "escrow",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return escrow.NewLedger(ctn.Get("payment.router").(*payment.Router)), nil
		},
	},
	{
		Name:  "market",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			tokens, err := config.Get().Tokens()
			if err != nil {
				return nil, err
			}

			return market.NewMarket(
				market.Config{
					Admin:        config.Get().Admin,
					FeeRate:      config.Get().FeeRate,
					FeeRecipient: config.Get().FeeRecipient,
					Tokens:       tokens,
				},
				ctn.Get("registry.cached").(*registry.CachedRegistry),
				ctn.Get("payment.router").(*payment.Router),
				ctn.Get("escrow").(*escrow.Ledger),
				ctn.Get("clock").(market.Clock),
				ctn.Get("events").(*event.Manager),
				ctn.Get("bank").(*ledger.Bank),
				ctn.Get("tokens").(*ledger.Tokens),
				ctn.Get("registry").(*registry.MemoryRegistry),
			)
		},
	},
	{
		Name:  "elastic",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New(config.Get().ElasticSearch)
			if err != nil {
				zap.L().With(zap.Error(err)).Error("Failed to start ES")
				return nil, err
			}

			return elastic, nil
		},
		Close: func(obj interface{}) error {
			obj.(elastic_search.Index).Persist()
			return nil
		},
	},
	{
		Name:  "action.repo",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			if !config.Get().ElasticSearch.Enabled() {
				zap.L().Info("Action history kept in memory")
				return repository.NewMemoryActionRepository(), nil
			}

			elastic := ctn.Get("elastic").(elastic_search.Index)
			if err := elastic.InstallMappings(); err != nil {
				return nil, err
			}

			return repository.NewActionRepository(elastic), nil
		},
	},
	{
		Name:  "marketplace.indexer",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewMarketplaceIndexer(ctn.Get("action.repo").(repository.ActionRepository)), nil
		},
	},
	{
		Name:  "messenger",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Nats.Url, config.Get().Nats.Subject), nil
		},
		Close: func(obj interface{}) error {
			obj.(messenger.MessageService).Close()
			return nil
		},
	},
	{
		Name:  "notify",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			return notify.NewService(
				config.Get().Webhook.Url,
				notify.NewClient(config.Get().Webhook.Retries),
				ctn.Get("events").(*event.Manager),
			), nil
		},
		Close: func(obj interface{}) error {
			obj.(notify.Service).Close()
			return nil
		},
	},
	{
		Name:  "keeper",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			var persist func()
			if config.Get().ElasticSearch.Enabled() {
				elastic := ctn.Get("elastic").(elastic_search.Index)
				persist = func() { elastic.Persist() }
			}

			return daemon.NewKeeper(
				ctn.Get("market").(*market.Market),
				config.Get().Keeper.Account,
				config.Get().Keeper.Interval,
				persist,
			), nil
		},
	},
	{
		Name:  "api.server",
		Scope: di.App,
		Build: func(ctn di.Container) (interface{}, error) {
			m := ctn.Get("market").(*market.Market)
			server := api.NewServer(m, m, ctn.Get("action.repo").(repository.ActionRepository))
			if config.Get().Env != "dev" {
				return server, nil
			}

			zap.L().Warn("Dev faucet routes enabled")
			return server.WithFaucet(faucet{
				market:   m,
				registry: ctn.Get("registry").(*registry.MemoryRegistry),
				bank:     ctn.Get("bank").(*ledger.Bank),
				tokens:   ctn.Get("tokens").(*ledger.Tokens),
			}), nil
		},
	},
}
