package main

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"time"
)

func serve(c *cli.Context) error {
	s, err := newSandbox()
	if err != nil {
		return err
	}
	defer s.container.Delete()

	s.container.GetMarketplaceIndexer().Subscribe(s.container.GetEvents())

	if err := seed(s); err != nil {
		return err
	}

	zap.L().With(zap.String("port", c.String("port"))).Info("Serving sandbox market")

	return http.ListenAndServe(":"+c.String("port"), s.container.GetApiServer().Router())
}

// seed leaves one of every record kind behind: a settled offer, an open listing and an auction with bids.
func seed(s *sandbox) error {
	if err := acceptedOffer(s); err != nil {
		return err
	}

	if _, err := s.market.ListItem(market.Call{Sender: bob}, s.asset(2), entity.Native, 40); err != nil {
		return err
	}

	if _, err := startAuction(s); err != nil {
		return err
	}

	_, err := s.market.MakeOffer(market.Call{Sender: alice, Value: 20}, s.asset(1), entity.Native, 20, s.now.Add(time.Hour))
	return err
}

func listen(c *cli.Context) error {
	url := config.Get().Nats.Url
	if url == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	service := messenger.NewMessenger(url, config.Get().Nats.Subject)
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	zap.L().With(zap.String("item", c.String("item"))).Info("Listening for marketplace events")

	return service.ConsumeMessages(ctx, messenger.Item(c.String("item")), func(msg string) {
		fmt.Println(msg)
	})
}
