package main

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"sort"
	"strings"
	"time"
)

type scenario func(s *sandbox) error

var scenarios = map[string]scenario{
	"a": fixedPriceSale,
	"b": auctionSettlement,
	"c": canceledAuction,
	"d": acceptedOffer,
	"e": biddingWindow,
}

func runScenario(c *cli.Context) error {
	name := strings.ToLower(c.Args().First())

	names := []string{name}
	if name == "all" {
		names = names[:0]
		for n := range scenarios {
			names = append(names, n)
		}
		sort.Strings(names)
	}

	for _, n := range names {
		run, ok := scenarios[n]
		if !ok {
			return fmt.Errorf("unknown scenario %q", n)
		}

		s, err := newSandbox()
		if err != nil {
			return err
		}

		fmt.Printf("Scenario %s\n", strings.ToUpper(n))
		if err := run(s); err != nil {
			zap.L().With(zap.String("scenario", n), zap.Error(err)).Error("Scenario failed")
			return err
		}
		s.printBalances()
		_ = s.container.Delete()
	}

	return nil
}

func fixedPriceSale(s *sandbox) error {
	receipt, err := s.market.ListItem(market.Call{Sender: seller}, s.asset(1), entity.Native, 10)
	if err != nil {
		return err
	}

	receipt, err = s.market.BuyItem(market.Call{Sender: alice, Value: 10}, receipt.RecordId)
	if err != nil {
		return err
	}

	printSettlement(receipt)
	fmt.Printf("  asset 1 owned by %s\n", s.owner(1))

	return nil
}

func startAuction(s *sandbox) (uint64, error) {
	receipt, err := s.market.StartAuction(market.Call{Sender: seller}, market.AuctionParams{
		Asset:          s.asset(1),
		PaymentMethod:  entity.Native,
		DirectBuyPrice: 100,
		StartPrice:     10,
		StartTime:      s.now,
		EndTime:        s.now.Add(time.Hour),
	})
	if err != nil {
		return 0, err
	}

	if _, err := s.market.Bid(market.Call{Sender: alice, Value: 15}, receipt.RecordId, 15); err != nil {
		return 0, err
	}
	s.advance(time.Second)
	if _, err := s.market.Bid(market.Call{Sender: bob, Value: 25}, receipt.RecordId, 25); err != nil {
		return 0, err
	}

	return receipt.RecordId, nil
}

func auctionSettlement(s *sandbox) error {
	id, err := startAuction(s)
	if err != nil {
		return err
	}

	s.advance(time.Hour)
	receipt, err := s.market.EndAuction(market.Call{Sender: alice}, id)
	if err != nil {
		return err
	}

	printSettlement(receipt)
	fmt.Printf("  asset 1 owned by %s, %s can withdraw %d\n", s.owner(1), alice, s.market.GetUserBidAmount(id, alice))

	_, err = s.market.WithdrawBid(market.Call{Sender: alice}, id)
	return err
}

func canceledAuction(s *sandbox) error {
	id, err := startAuction(s)
	if err != nil {
		return err
	}

	if _, err := s.market.CancelAuction(market.Call{Sender: seller}, id); err != nil {
		return err
	}

	receipt, err := s.market.WithdrawBid(market.Call{Sender: bob}, id)
	if err != nil {
		return err
	}
	fmt.Printf("  %s withdrew %d\n", bob, receipt.Amount)

	_, err = s.market.CancelAuction(market.Call{Sender: seller}, id)
	if !errors.Is(err, market.ErrCancelImpossible) {
		return fmt.Errorf("expected second cancel to fail, got %v", err)
	}
	fmt.Printf("  second cancel: %v\n", err)

	return nil
}

func acceptedOffer(s *sandbox) error {
	receipt, err := s.market.MakeOffer(market.Call{Sender: bob, Value: 30}, s.asset(2), entity.Native, 30, s.now.Add(24*time.Hour))
	if err != nil {
		return err
	}
	offerId := receipt.RecordId

	receipt, err = s.market.AcceptOffer(market.Call{Sender: seller}, s.asset(2), offerId)
	if err != nil {
		return err
	}
	printSettlement(receipt)
	fmt.Printf("  asset 2 owned by %s\n", s.owner(2))

	_, err = s.market.AcceptOffer(market.Call{Sender: bob}, s.asset(2), offerId)
	if !errors.Is(err, market.ErrOfferNotActive) {
		return fmt.Errorf("expected second accept to fail, got %v", err)
	}
	fmt.Printf("  second accept: %v\n", err)

	return nil
}

func biddingWindow(s *sandbox) error {
	start := s.now.Add(time.Hour)
	receipt, err := s.market.StartAuction(market.Call{Sender: seller}, market.AuctionParams{
		Asset:          s.asset(1),
		PaymentMethod:  entity.Native,
		DirectBuyPrice: 100,
		StartPrice:     10,
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
	})
	if err != nil {
		return err
	}

	for _, at := range []time.Time{start.Add(-time.Second), start.Add(time.Hour + time.Second)} {
		s.now = at
		_, err := s.market.Bid(market.Call{Sender: alice, Value: 15}, receipt.RecordId, 15)
		if !errors.Is(err, market.ErrAuctionNotOpen) {
			return fmt.Errorf("expected bid at %s to fail, got %v", at.Format(time.RFC3339), err)
		}
		fmt.Printf("  bid at %s: %v\n", at.Format(time.RFC3339), err)
	}

	return nil
}

func printSettlement(receipt *entity.Receipt) {
	if receipt.Settlement == nil {
		return
	}

	st := receipt.Settlement
	fmt.Printf("  %s: price %d, fee %d to %s, royalty %d to %s, seller %s receives %d\n",
		receipt.Operation, st.Price, st.Fee, st.FeeRecipient, st.Royalty, st.RoyaltyReceiver, st.Seller, st.SellerAmount)
}
