package linking

import (
	"testing"

	"exchangecatalog/internal/models"
)

func TestSharedEndpoint(t *testing.T) {
	products := []models.Product{
		{ProductID: 1, VendorID: 7, Symbol: "BTCUSDT"},
		{ProductID: 2, VendorID: 7, Symbol: "ETHUSDT"},
	}
	endpoints := []models.RestEndpoint{
		{EndpointID: 10, VendorID: 7, Path: "/api/v3/ticker/24hr"},
		{EndpointID: 11, VendorID: 7, Path: "/api/v3/depth"},
		{EndpointID: 12, VendorID: 7, Path: "/api/v3/exchangeInfo"},
		{EndpointID: 13, VendorID: 7, Path: "/api/v3/ticker/price", AuthenticationRequired: true},
	}
	channels := []models.WebSocketChannel{
		{ChannelID: 20, VendorID: 7, ChannelName: "<symbol>@ticker"},
	}

	set := SharedEndpoint(products, endpoints, channels)
	if len(set.Channels) != 0 {
		t.Fatalf("shared endpoint strategy must not link channels, got %d", len(set.Channels))
	}
	// 2 products x (ticker + depth); exchangeInfo has no role, auth endpoint skipped.
	if len(set.Endpoints) != 4 {
		t.Fatalf("expected 4 endpoint links, got %d", len(set.Endpoints))
	}
	roles := map[string]int{}
	for _, l := range set.Endpoints {
		roles[l.Role]++
	}
	if roles["ticker"] != 2 || roles["order_book"] != 2 {
		t.Fatalf("unexpected role distribution %v", roles)
	}
}

func TestPerSymbolChannel(t *testing.T) {
	products := []models.Product{
		{ProductID: 1, VendorID: 3, Symbol: "BTC_USDT"},
		{ProductID: 2, VendorID: 3, Symbol: "ETH_USDT"},
	}
	channels := []models.WebSocketChannel{
		{ChannelID: 30, VendorID: 3, ChannelName: "spot/ticker"},
		{ChannelID: 31, VendorID: 3, ChannelName: "spot/trade"},
		{ChannelID: 32, VendorID: 3, ChannelName: "spot/user/order", AuthenticationRequired: true},
	}

	set := PerSymbolChannel(products, nil, channels)
	if len(set.Endpoints) != 0 {
		t.Fatalf("per symbol channel strategy must not link endpoints, got %d", len(set.Endpoints))
	}
	if len(set.Channels) != 4 {
		t.Fatalf("expected 4 channel links, got %d", len(set.Channels))
	}
	for _, l := range set.Channels {
		if l.ChannelID == 32 {
			t.Fatal("authenticated channel must not be linked")
		}
	}
}

func TestRegistryDefaults(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"shared_endpoint", "per_symbol_channel"} {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("built-in strategy %q missing", name)
		}
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Fatal("unknown strategy should not resolve")
	}

	reg.Register("custom", func(p []models.Product, e []models.RestEndpoint, c []models.WebSocketChannel) LinkSet {
		return LinkSet{}
	})
	if _, ok := reg.Get("custom"); !ok {
		t.Fatal("custom strategy not registered")
	}
}

func TestRoleForName(t *testing.T) {
	cases := map[string]string{
		"ticker":               "ticker",
		"spot/ticker":          "ticker",
		"/v1/orderbook":        "order_book",
		"<symbol>@depth":       "order_book",
		"spot/trade":           "trade",
		"/spot/v1/symbols":     "",
		"spot/kline":           "candle",
		"/api/v3/exchangeInfo": "",
	}
	for name, want := range cases {
		if got := roleForName(name); got != want {
			t.Errorf("roleForName(%q) = %q, want %q", name, got, want)
		}
	}
}
