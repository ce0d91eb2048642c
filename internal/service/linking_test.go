package service

import (
	"context"
	"errors"
	"testing"

	"exchangecatalog/internal/linking"
)

func TestLinkProductToEndpoint_CrossVendor(t *testing.T) {
	repo := newStubRepo()
	binance := repo.addVendor("binance")
	bitget := repo.addVendor("bitget")
	product := repo.addProduct(binance.VendorID, "BTCUSDT")
	endpoint := repo.addEndpoint(bitget.VendorID, "/api/v2/spot/market/tickers", "GET")
	svc := &LinkingService{Store: repo, Strategies: linking.NewRegistry()}

	err := svc.LinkProductToEndpoint(context.Background(), product.ProductID, endpoint.EndpointID, "ticker")
	var cross *CrossVendorLinkError
	if !errors.As(err, &cross) {
		t.Fatalf("expected CrossVendorLinkError, got %v", err)
	}
	if len(repo.endpointLinks) != 0 {
		t.Fatal("cross-vendor attempt must leave no partial state")
	}
}

func TestLinkProductToChannel_Idempotent(t *testing.T) {
	repo := newStubRepo()
	vendor := repo.addVendor("bitmart")
	product := repo.addProduct(vendor.VendorID, "BTC_USDT")
	channel := repo.addChannel(vendor.VendorID, "spot/ticker")
	svc := &LinkingService{Store: repo, Strategies: linking.NewRegistry()}

	for i := 0; i < 2; i++ {
		if err := svc.LinkProductToChannel(context.Background(), product.ProductID, channel.ChannelID, "ticker"); err != nil {
			t.Fatalf("link attempt %d: %v", i+1, err)
		}
	}
	if len(repo.channelLinks) != 1 {
		t.Fatalf("expected 1 link row, got %d", len(repo.channelLinks))
	}
}

func TestApplyStrategy_NoStrategyIsNoop(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor("zaif")
	svc := &LinkingService{Store: repo, Strategies: linking.NewRegistry()}

	result, err := svc.ApplyStrategy(context.Background(), "zaif", "nonexistent")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Implemented {
		t.Fatal("missing strategy must report not implemented")
	}
	if result.EndpointLinks != 0 || result.ChannelLinks != 0 {
		t.Fatalf("no-op must not link anything: %+v", result)
	}
}

func TestApplyStrategy_SharedEndpoint(t *testing.T) {
	repo := newStubRepo()
	vendor := repo.addVendor("binance")
	repo.addProduct(vendor.VendorID, "BTCUSDT")
	repo.addProduct(vendor.VendorID, "ETHUSDT")
	repo.addEndpoint(vendor.VendorID, "/api/v3/ticker/24hr", "GET")
	repo.addEndpoint(vendor.VendorID, "/api/v3/exchangeInfo", "GET")
	svc := &LinkingService{Store: repo, Strategies: linking.NewRegistry()}

	result, err := svc.ApplyStrategy(context.Background(), "binance", "shared_endpoint")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !result.Implemented {
		t.Fatal("built-in strategy should be implemented")
	}
	if result.EndpointLinks != 2 {
		t.Fatalf("expected 2 endpoint links (2 products x 1 ticker endpoint), got %d", result.EndpointLinks)
	}

	// Re-run is idempotent at the storage layer.
	again, err := svc.ApplyStrategy(context.Background(), "binance", "shared_endpoint")
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if again.EndpointLinks != 2 {
		t.Fatalf("re-run should report same links, got %d", again.EndpointLinks)
	}
	if len(repo.endpointLinks) != 2 {
		t.Fatalf("expected 2 stored rows after re-run, got %d", len(repo.endpointLinks))
	}
}

func TestApplyStrategy_PerSymbolChannel(t *testing.T) {
	repo := newStubRepo()
	vendor := repo.addVendor("bitmart")
	repo.addProduct(vendor.VendorID, "BTC_USDT")
	repo.addProduct(vendor.VendorID, "ETH_USDT")
	repo.addChannel(vendor.VendorID, "spot/ticker")
	repo.addChannel(vendor.VendorID, "spot/trade")
	svc := &LinkingService{Store: repo, Strategies: linking.NewRegistry()}

	result, err := svc.ApplyStrategy(context.Background(), "bitmart", "per_symbol_channel")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.ChannelLinks != 4 {
		t.Fatalf("expected 4 channel links, got %d", result.ChannelLinks)
	}
	if result.EndpointLinks != 0 {
		t.Fatalf("channel strategy must not create endpoint links, got %d", result.EndpointLinks)
	}
}
