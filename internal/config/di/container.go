package di

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-marketplace/internal/daemon"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/notify"
	"github.com/ZilDuck/zilliqa-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
)

// Container gives typed access to the application services.
type Container struct {
	ctn di.Container
}

func NewContainer(defs ...di.Def) (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}
	// Later definitions replace earlier ones with the same name.
	if err := builder.Add(defs...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) Delete() error {
	return c.ctn.Delete()
}

func (c *Container) GetMarket() *market.Market {
	return c.ctn.Get("market").(*market.Market)
}

// SafeGetMarket reports a build failure, such as invalid token configuration, instead of panicking.
func (c *Container) SafeGetMarket() (*market.Market, error) {
	obj, err := c.ctn.SafeGet("market")
	if err != nil {
		return nil, err
	}

	return obj.(*market.Market), nil
}

func (c *Container) GetEvents() *event.Manager {
	return c.ctn.Get("events").(*event.Manager)
}

func (c *Container) GetBank() *ledger.Bank {
	return c.ctn.Get("bank").(*ledger.Bank)
}

func (c *Container) GetTokens() *ledger.Tokens {
	return c.ctn.Get("tokens").(*ledger.Tokens)
}

func (c *Container) GetRegistry() *registry.MemoryRegistry {
	return c.ctn.Get("registry").(*registry.MemoryRegistry)
}

func (c *Container) GetActionRepo() repository.ActionRepository {
	return c.ctn.Get("action.repo").(repository.ActionRepository)
}

func (c *Container) GetMarketplaceIndexer() indexer.MarketplaceIndexer {
	return c.ctn.Get("marketplace.indexer").(indexer.MarketplaceIndexer)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetNotifier() notify.Service {
	return c.ctn.Get("notify").(notify.Service)
}

func (c *Container) GetApiServer() api.Server {
	return c.ctn.Get("api.server").(api.Server)
}

func (c *Container) GetKeeper() *daemon.Keeper {
	return c.ctn.Get("keeper").(*daemon.Keeper)
}
