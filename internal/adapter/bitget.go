package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"exchangecatalog/internal/models"
)

// Bitget wraps every REST response in {code, msg, data}; "00000" is success.
// The v2 symbols payload carries size limits as strings and the price
// increment as a decimal-place count.
type Bitget struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	BaseURL string
}

func (a *Bitget) VendorInfo() VendorInfo {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		base = "https://api.bitget.com"
	}
	return VendorInfo{
		Name:         "bitget",
		DisplayName:  "Bitget",
		BaseURL:      base,
		WebsocketURL: "wss://ws.bitget.com/spot/v1/stream",
	}
}

func (a *Bitget) LinkStrategy() string { return "per_symbol_channel" }

func (a *Bitget) RestEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			Path:          "/api/spot/v1/public/time",
			Method:        http.MethodGet,
			Description:   "Server time",
			RateLimitTier: "public",
		},
		{
			Path:        "/api/v2/spot/public/symbols",
			Method:      http.MethodGet,
			Description: "All spot trading pairs with size limits and precision",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code": map[string]any{"type": "string"},
					"data": map[string]any{"type": "array"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/api/spot/v1/market/ticker",
			Method:      http.MethodGet,
			Description: "Ticker for one trading pair",
			QueryParameters: mustJSON(map[string]any{
				"symbol": map[string]any{"type": "string", "required": true},
			}),
			RateLimitTier: "public",
		},
		{
			Path:          "/api/spot/v1/market/tickers",
			Method:        http.MethodGet,
			Description:   "Tickers for all trading pairs",
			RateLimitTier: "public",
		},
		{
			Path:        "/api/spot/v1/market/depth",
			Method:      http.MethodGet,
			Description: "Order book depth for a trading pair",
			QueryParameters: mustJSON(map[string]any{
				"symbol": map[string]any{"type": "string", "required": true},
				"type":   map[string]any{"type": "string", "required": false},
			}),
			RateLimitTier: "public",
		},
	}
}

func (a *Bitget) WebSocketChannels() []ChannelDescriptor {
	return []ChannelDescriptor{
		{
			ChannelName: "ticker",
			Description: "Real-time ticker updates, subscribed per instrument",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "ticker", "instId": "<symbol>"},
				},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "ticker", "instId": "<symbol>"},
				},
			}),
			MessageTypes: mustJSON([]string{"snapshot", "subscription"}),
			MessageSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{"type": "string"},
					"data":   map[string]any{"type": "array"},
				},
			}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "sp:ticker:<symbol>",
			}),
		},
		{
			ChannelName: "books5",
			Description: "Top 5 order book levels, snapshot per push",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "books5", "instId": "<symbol>"},
				},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "books5", "instId": "<symbol>"},
				},
			}),
			MessageTypes: mustJSON([]string{"snapshot"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "sp:books5:<symbol>",
				"depth_levels":    5,
			}),
		},
		{
			ChannelName: "trade",
			Description: "Trade execution updates, subscribed per instrument",
			SubscribeFormat: mustJSON(map[string]any{
				"op": "subscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "trade", "instId": "<symbol>"},
				},
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"op": "unsubscribe",
				"args": []map[string]any{
					{"instType": "sp", "channel": "trade", "instId": "<symbol>"},
				},
			}),
			MessageTypes: mustJSON([]string{"snapshot", "update"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "sp:trade:<symbol>",
			}),
		},
	}
}

func (a *Bitget) DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error) {
	info := a.VendorInfo()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.BaseURL+"/api/v2/spot/public/symbols", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bitget symbols: http %d", resp.StatusCode)
	}

	var parsed struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			Symbol         string `json:"symbol"`
			BaseCoin       string `json:"baseCoin"`
			QuoteCoin      string `json:"quoteCoin"`
			Status         string `json:"status"`
			MinTradeAmount string `json:"minTradeAmount"`
			MaxTradeAmount string `json:"maxTradeAmount"`
			PricePrecision string `json:"pricePrecision"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Code != "00000" {
		return nil, fmt.Errorf("bitget symbols: code %s %s", parsed.Code, parsed.Msg)
	}

	products := make([]ProductDescriptor, 0, len(parsed.Data))
	for _, s := range parsed.Data {
		if s.Symbol == "" || s.BaseCoin == "" || s.QuoteCoin == "" {
			if a.Logger != nil {
				a.Logger.Warn("skip bitget symbol with missing fields", zap.String("symbol", s.Symbol))
			}
			continue
		}
		// gray means limited trading, still quotable.
		status := models.ProductStatusOffline
		switch strings.ToLower(s.Status) {
		case "online", "gray":
			status = models.ProductStatusOnline
		}
		products = append(products, ProductDescriptor{
			Symbol:         s.Symbol,
			BaseCurrency:   s.BaseCoin,
			QuoteCurrency:  s.QuoteCoin,
			Status:         status,
			MinOrderSize:   stringDecimal(s.MinTradeAmount),
			MaxOrderSize:   stringDecimal(s.MaxTradeAmount),
			PriceIncrement: precisionDecimal(s.PricePrecision),
			VendorMetadata: mustJSON(map[string]any{
				"product_type": "spot",
				"status_raw":   s.Status,
			}),
		})
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("bitget symbols: empty symbol list")
	}
	return products, nil
}

// Mappings covers the WS ticker snapshot. Values arrive as strings inside a
// data[] array element; ts is epoch milliseconds. quoteVolume is the direct
// volume source, baseVolume the low-priority alternative.
func (a *Bitget) Mappings() []MappingProposal {
	direct := []struct{ path, field, transform string }{
		{"data[].instId", "symbol", "identity"},
		{"data[].last", "last_price", "string_to_numeric"},
		{"data[].bestBid", "bid_price", "string_to_numeric"},
		{"data[].bestAsk", "ask_price", "string_to_numeric"},
		{"data[].bidSz", "best_bid_size", "string_to_numeric"},
		{"data[].askSz", "best_ask_size", "string_to_numeric"},
		{"data[].open24h", "open_24h", "string_to_numeric"},
		{"data[].high24h", "high_24h", "string_to_numeric"},
		{"data[].low24h", "low_24h", "string_to_numeric"},
		{"data[].quoteVolume", "volume_24h", "string_to_numeric"},
		{"data[].ts", "timestamp", "ms_to_datetime"},
	}
	out := make([]MappingProposal, 0, len(direct)+1)
	for _, m := range direct {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeWebsocket,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  m.transform,
			Priority:        10,
			ChannelName:     "ticker",
		})
	}
	out = append(out, MappingProposal{
		CanonicalField:  "volume_24h",
		SourceType:      models.SourceTypeWebsocket,
		EntityType:      "ticker",
		VendorFieldPath: "data[].baseVolume",
		Transformation:  "string_to_numeric",
		Priority:        0,
		ChannelName:     "ticker",
	})
	return out
}

func (a *Bitget) httpClient() *http.Client {
	if a != nil && a.HTTP != nil {
		return a.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// precisionDecimal turns a decimal-place count like "4" into the increment
// 0.0001. Unparsable or zero precision yields nil.
func precisionDecimal(s string) *decimal.Decimal {
	scale, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || scale <= 0 {
		return nil
	}
	d := decimal.New(1, int32(-scale))
	return &d
}
