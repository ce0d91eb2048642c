package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"exchangecatalog/internal/models"
)

// Bitmart symbols come back as "BTC_USDT" strings from /spot/v1/symbols.
// WS ticker mappings use "data[]." array element paths; close_24h and
// base_volume_24h are low-priority alternatives for fields that also have a
// direct vendor field.
type Bitmart struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	BaseURL string
}

func (a *Bitmart) VendorInfo() VendorInfo {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		base = "https://api-cloud.bitmart.com"
	}
	return VendorInfo{
		Name:         "bitmart",
		DisplayName:  "BitMart",
		BaseURL:      base,
		WebsocketURL: "wss://ws-manager-compress.bitmart.com",
	}
}

func (a *Bitmart) LinkStrategy() string { return "per_symbol_channel" }

func (a *Bitmart) RestEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			Path:        "/spot/v1/symbols",
			Method:      http.MethodGet,
			Description: "List of all trading pair symbols",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code": map[string]any{"type": "integer"},
					"data": map[string]any{"type": "object"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:          "/spot/v1/symbols/details",
			Method:        http.MethodGet,
			Description:   "Trading pair details with precision and size limits",
			RateLimitTier: "public",
		},
		{
			Path:        "/spot/v1/ticker",
			Method:      http.MethodGet,
			Description: "Ticker for one or all trading pairs",
			QueryParameters: mustJSON(map[string]any{
				"symbol": map[string]any{"type": "string", "required": false},
			}),
			RateLimitTier: "public",
		},
	}
}

func (a *Bitmart) WebSocketChannels() []ChannelDescriptor {
	return []ChannelDescriptor{
		{
			ChannelName: "spot/ticker",
			Description: "Real-time ticker updates, subscribed per symbol",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe", "args": []string{"spot/ticker:<symbol>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe", "args": []string{"spot/ticker:<symbol>"},
			}),
			MessageTypes: mustJSON([]string{"ticker"}),
			MessageSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"table": map[string]any{"type": "string"},
					"data":  map[string]any{"type": "array"},
				},
			}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "spot/ticker:<symbol>",
				"symbol_format":   "BASE_QUOTE",
			}),
		},
		{
			ChannelName: "spot/depth",
			Description: "Order book depth updates, subscribed per symbol",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe", "args": []string{"spot/depth:<symbol>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe", "args": []string{"spot/depth:<symbol>"},
			}),
			MessageTypes: mustJSON([]string{"depth"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "spot/depth:<symbol>",
			}),
		},
		{
			ChannelName: "spot/trade",
			Description: "Trade execution updates, subscribed per symbol",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe", "args": []string{"spot/trade:<symbol>"},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe", "args": []string{"spot/trade:<symbol>"},
			}),
			MessageTypes: mustJSON([]string{"trade"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "spot/trade:<symbol>",
			}),
		},
	}
}

func (a *Bitmart) DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error) {
	info := a.VendorInfo()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.BaseURL+"/spot/v1/symbols", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bitmart symbols: http %d", resp.StatusCode)
	}

	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Symbols []string `json:"symbols"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Code != 1000 {
		return nil, fmt.Errorf("bitmart symbols: code %d %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Data.Symbols) == 0 {
		return nil, fmt.Errorf("bitmart symbols: empty symbol list")
	}

	products := make([]ProductDescriptor, 0, len(parsed.Data.Symbols))
	for _, symbol := range parsed.Data.Symbols {
		base, quote := symbol, "UNKNOWN"
		if parts := strings.Split(symbol, "_"); len(parts) >= 2 {
			base, quote = parts[0], parts[1]
		} else if a.Logger != nil {
			a.Logger.Warn("bitmart symbol without separator", zap.String("symbol", symbol))
		}
		products = append(products, ProductDescriptor{
			Symbol:        symbol,
			BaseCurrency:  base,
			QuoteCurrency: quote,
			Status:        models.ProductStatusOnline,
			VendorMetadata: mustJSON(map[string]any{
				"product_type": "spot",
			}),
		})
	}
	return products, nil
}

func (a *Bitmart) Mappings() []MappingProposal {
	direct := []struct{ path, field, transform string }{
		{"data[].symbol", "symbol", "identity"},
		{"data[].last_price", "last_price", "string_to_numeric"},
		{"data[].best_bid", "bid_price", "string_to_numeric"},
		{"data[].best_ask", "ask_price", "string_to_numeric"},
		{"data[].best_bid_size", "best_bid_size", "string_to_numeric"},
		{"data[].best_ask_size", "best_ask_size", "string_to_numeric"},
		{"data[].high_24h", "high_24h", "string_to_numeric"},
		{"data[].low_24h", "low_24h", "string_to_numeric"},
		{"data[].open_24h", "open_24h", "string_to_numeric"},
		{"data[].quote_volume_24h", "volume_24h", "string_to_numeric"},
		{"data[].timestamp", "timestamp", "ms_to_datetime"},
	}
	alternative := []struct{ path, field, transform string }{
		{"data[].base_volume_24h", "volume_24h", "string_to_numeric"},
		{"data[].close_24h", "last_price", "string_to_numeric"},
	}
	out := make([]MappingProposal, 0, len(direct)+len(alternative))
	for _, m := range direct {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  m.transform,
			Priority:        10,
			ChannelName:     "spot/ticker",
		})
	}
	for _, m := range alternative {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  m.transform,
			Priority:        0,
			ChannelName:     "spot/ticker",
		})
	}
	return out
}

func (a *Bitmart) httpClient() *http.Client {
	if a != nil && a.HTTP != nil {
		return a.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}
