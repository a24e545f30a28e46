package main

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"go.uber.org/zap"
	"net/http"
)

var container *di.Container

func main() {
	config.Init("marketd")

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer container.Delete()

	if _, err := container.SafeGetMarket(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start market")
	}

	container.GetMarketplaceIndexer().Subscribe(container.GetEvents())
	// Building the notifier registers its webhook listeners.
	container.GetNotifier()

	if config.Get().Nats.Url != "" {
		messenger.PublishEvents(container.GetEvents(), container.GetMessenger())
	}

	if config.Get().Keeper.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go container.GetKeeper().Run(ctx)
	}

	zap.L().With(
		zap.String("port", config.Get().Api.Port),
		zap.String("custody", config.Get().Custody),
		zap.Uint64("feeRate", config.Get().FeeRate),
	).Info("Marketplace Started")

	if err := http.ListenAndServe(":"+config.Get().Api.Port, container.GetApiServer().Router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start marketplace api")
	}
}
