package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"exchangecatalog/internal/models"
)

// Korbit is a South Korean exchange. Pairs come back from /v1/constants as
// "btc_krw" style keys; the catalog stores them as "BTC-KRW".
type Korbit struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	BaseURL string
}

func (a *Korbit) VendorInfo() VendorInfo {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		base = "https://api.korbit.co.kr"
	}
	return VendorInfo{
		Name:         "korbit",
		DisplayName:  "Korbit",
		BaseURL:      base,
		WebsocketURL: "wss://ws.korbit.co.kr",
	}
}

func (a *Korbit) LinkStrategy() string { return "per_symbol_channel" }

func (a *Korbit) RestEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			Path:        "/v1/constants",
			Method:      http.MethodGet,
			Description: "Exchange configuration and trading rules for all currency pairs",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"exchange": map[string]any{"type": "object"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/v1/ticker",
			Method:      http.MethodGet,
			Description: "Current price for a currency pair",
			QueryParameters: mustJSON(map[string]any{
				"currency_pair": map[string]any{"type": "string", "required": true},
			}),
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"timestamp": map[string]any{"type": "integer"},
					"last":      map[string]any{"type": "string"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/v1/orderbook",
			Method:      http.MethodGet,
			Description: "Order book depth for a currency pair",
			QueryParameters: mustJSON(map[string]any{
				"currency_pair": map[string]any{"type": "string", "required": true},
			}),
			RateLimitTier: "public",
		},
		{
			Path:                   "/v1/user/balances",
			Method:                 http.MethodGet,
			AuthenticationRequired: true,
			Description:            "Account balance information",
			RateLimitTier:          "private",
		},
	}
}

func (a *Korbit) WebSocketChannels() []ChannelDescriptor {
	return []ChannelDescriptor{
		{
			ChannelName: "ticker",
			Description: "Real-time ticker updates for currency pairs",
			SubscribeFormat: mustJSON(map[string]any{
				"type": "subscribe", "method": "ticker", "params": []string{"<currency_pair>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"type": "unsubscribe", "method": "ticker", "params": []string{"<currency_pair>"},
			}),
			MessageTypes: mustJSON([]string{"ticker", "subscription"}),
			MessageSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"currency_pair": map[string]any{"type": "string"},
					"timestamp":     map[string]any{"type": "integer"},
					"last":          map[string]any{"type": "string"},
					"open":          map[string]any{"type": "string"},
					"high":          map[string]any{"type": "string"},
					"low":           map[string]any{"type": "string"},
					"volume":        map[string]any{"type": "string"},
					"bid":           map[string]any{"type": "string"},
					"ask":           map[string]any{"type": "string"},
				},
			}),
			VendorMetadata: mustJSON(map[string]any{
				"market_format":             "base_quote_lowercase",
				"supports_multiple_symbols": true,
			}),
		},
		{
			ChannelName: "orderbook",
			Description: "Real-time order book depth updates",
			SubscribeFormat: mustJSON(map[string]any{
				"type": "subscribe", "method": "orderbook", "params": []string{"<currency_pair>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"type": "unsubscribe", "method": "orderbook", "params": []string{"<currency_pair>"},
			}),
			MessageTypes:   mustJSON([]string{"orderbook", "snapshot", "subscription"}),
			VendorMetadata: mustJSON(map[string]any{"update_type": "snapshot"}),
		},
		{
			ChannelName: "trade",
			Description: "Real-time trade execution updates",
			SubscribeFormat: mustJSON(map[string]any{
				"type": "subscribe", "method": "trade", "params": []string{"<currency_pair>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"type": "unsubscribe", "method": "trade", "params": []string{"<currency_pair>"},
			}),
			MessageTypes: mustJSON([]string{"trade", "subscription"}),
		},
	}
}

func (a *Korbit) DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error) {
	info := a.VendorInfo()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.BaseURL+"/v1/constants", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("korbit constants: http %d", resp.StatusCode)
	}

	var parsed struct {
		Exchange map[string]struct {
			TickSize     *float64 `json:"tick_size"`
			MinPrice     *float64 `json:"min_price"`
			MaxPrice     *float64 `json:"max_price"`
			OrderMinSize *float64 `json:"order_min_size"`
			OrderMaxSize *float64 `json:"order_max_size"`
		} `json:"exchange"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Exchange == nil {
		return nil, fmt.Errorf("korbit constants: missing exchange block")
	}

	pairs := make([]string, 0, len(parsed.Exchange))
	for pair := range parsed.Exchange {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	products := make([]ProductDescriptor, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, "_")
		if len(parts) != 2 {
			if a.Logger != nil {
				a.Logger.Warn("skip malformed korbit pair", zap.String("pair", pair))
			}
			continue
		}
		rules := parsed.Exchange[pair]
		base := strings.ToUpper(parts[0])
		quote := strings.ToUpper(parts[1])
		products = append(products, ProductDescriptor{
			Symbol:         base + "-" + quote,
			BaseCurrency:   base,
			QuoteCurrency:  quote,
			Status:         models.ProductStatusOnline,
			MinOrderSize:   floatDecimal(rules.OrderMinSize),
			MaxOrderSize:   floatDecimal(rules.OrderMaxSize),
			PriceIncrement: floatDecimal(rules.TickSize),
			VendorMetadata: mustJSON(map[string]any{
				"currency_pair": pair,
				"trading_rules": map[string]any{
					"tick_size":      rules.TickSize,
					"min_price":      rules.MinPrice,
					"max_price":      rules.MaxPrice,
					"order_min_size": rules.OrderMinSize,
					"order_max_size": rules.OrderMaxSize,
				},
			}),
		})
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("korbit constants: no currency pairs")
	}
	return products, nil
}

// Mappings covers the WS ticker message. Values arrive as strings and the
// timestamp is epoch milliseconds.
func (a *Korbit) Mappings() []MappingProposal {
	numeric := []struct{ path, field string }{
		{"last", "last_price"},
		{"bid", "bid_price"},
		{"ask", "ask_price"},
		{"open", "open_24h"},
		{"high", "high_24h"},
		{"low", "low_24h"},
		{"volume", "volume_24h"},
	}
	out := make([]MappingProposal, 0, len(numeric)+2)
	for _, m := range numeric {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  "string_to_numeric",
			ChannelName:     "ticker",
		})
	}
	out = append(out,
		MappingProposal{
			CanonicalField:  "timestamp",
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: "timestamp",
			Transformation:  "ms_to_datetime",
			ChannelName:     "ticker",
		},
		MappingProposal{
			CanonicalField:  "symbol",
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: "currency_pair",
			Transformation:  "identity",
			ChannelName:     "ticker",
		},
	)
	return out
}

func (a *Korbit) httpClient() *http.Client {
	if a != nil && a.HTTP != nil {
		return a.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

func floatDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
