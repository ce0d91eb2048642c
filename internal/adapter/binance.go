package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"exchangecatalog/internal/models"
)

// Binance exposes ticker data over REST; symbols are discovered from
// /api/v3/exchangeInfo and only TRADING symbols are kept.
type Binance struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	BaseURL string
}

func (a *Binance) VendorInfo() VendorInfo {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		base = "https://api.binance.com"
	}
	return VendorInfo{
		Name:         "binance",
		DisplayName:  "Binance",
		BaseURL:      base,
		WebsocketURL: "wss://stream.binance.com:9443",
	}
}

func (a *Binance) LinkStrategy() string { return "shared_endpoint" }

func (a *Binance) RestEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			Path:        "/api/v3/exchangeInfo",
			Method:      http.MethodGet,
			Description: "Exchange trading rules and symbol information",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symbols": map[string]any{"type": "array"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/api/v3/ticker/24hr",
			Method:      http.MethodGet,
			Description: "24 hour rolling window price change statistics",
			QueryParameters: mustJSON(map[string]any{
				"symbol": map[string]any{"type": "string", "required": false},
			}),
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symbol":    map[string]any{"type": "string"},
					"lastPrice": map[string]any{"type": "string"},
					"bidPrice":  map[string]any{"type": "string"},
					"askPrice":  map[string]any{"type": "string"},
					"closeTime": map[string]any{"type": "integer"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/api/v3/depth",
			Method:      http.MethodGet,
			Description: "Order book depth",
			QueryParameters: mustJSON(map[string]any{
				"symbol": map[string]any{"type": "string", "required": true},
				"limit":  map[string]any{"type": "integer", "required": false},
			}),
			RateLimitTier: "public",
		},
	}
}

func (a *Binance) WebSocketChannels() []ChannelDescriptor {
	return []ChannelDescriptor{
		{
			ChannelName: "<symbol>@ticker",
			Description: "Individual symbol 24hr rolling window ticker stream",
			SubscribeFormat: mustJSON(map[string]any{
				"method": "SUBSCRIBE", "params": []string{"<symbol>@ticker"}, "id": 1,
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"method": "UNSUBSCRIBE", "params": []string{"<symbol>@ticker"}, "id": 2,
			}),
			MessageTypes: mustJSON([]string{"24hrTicker"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "<symbol>@ticker",
				"symbol_case":     "lowercase",
			}),
		},
		{
			ChannelName: "<symbol>@depth",
			Description: "Order book diff depth stream",
			SubscribeFormat: mustJSON(map[string]any{
				"method": "SUBSCRIBE", "params": []string{"<symbol>@depth"}, "id": 1,
			}),
			UnsubscribeFormat: mustJSON(map[string]any{
				"method": "UNSUBSCRIBE", "params": []string{"<symbol>@depth"}, "id": 2,
			}),
			MessageTypes: mustJSON([]string{"depthUpdate"}),
			VendorMetadata: mustJSON(map[string]any{
				"channel_pattern": "<symbol>@depth",
				"symbol_case":     "lowercase",
			}),
		},
	}
}

func (a *Binance) DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error) {
	info := a.VendorInfo()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.BaseURL+"/api/v3/exchangeInfo", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance exchangeInfo: http %d", resp.StatusCode)
	}

	var parsed struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
			Filters    []struct {
				FilterType string `json:"filterType"`
				MinQty     string `json:"minQty"`
				MaxQty     string `json:"maxQty"`
				TickSize   string `json:"tickSize"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	products := make([]ProductDescriptor, 0, len(parsed.Symbols))
	for _, sym := range parsed.Symbols {
		if sym.Status != "TRADING" {
			continue
		}
		p := ProductDescriptor{
			Symbol:        sym.Symbol,
			BaseCurrency:  sym.BaseAsset,
			QuoteCurrency: sym.QuoteAsset,
			Status:        models.ProductStatusOnline,
			VendorMetadata: mustJSON(map[string]any{
				"status": sym.Status,
			}),
		}
		for _, f := range sym.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				p.MinOrderSize = stringDecimal(f.MinQty)
				p.MaxOrderSize = stringDecimal(f.MaxQty)
			case "PRICE_FILTER":
				p.PriceIncrement = stringDecimal(f.TickSize)
			}
		}
		products = append(products, p)
	}
	if a.Logger != nil {
		a.Logger.Debug("binance products discovered", zap.Int("count", len(products)))
	}
	return products, nil
}

// Mappings covers the REST 24hr ticker payload. Prices arrive as strings;
// closeTime is epoch milliseconds.
func (a *Binance) Mappings() []MappingProposal {
	numeric := []struct{ path, field string }{
		{"bidPrice", "bid_price"},
		{"bidQty", "best_bid_size"},
		{"askPrice", "ask_price"},
		{"askQty", "best_ask_size"},
		{"lastPrice", "last_price"},
		{"highPrice", "high_24h"},
		{"lowPrice", "low_24h"},
		{"openPrice", "open_24h"},
		{"volume", "volume_24h"},
	}
	out := make([]MappingProposal, 0, len(numeric)+2)
	for _, m := range numeric {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeRest,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  "string_to_numeric",
			EndpointPath:    "/api/v3/ticker/24hr",
			EndpointMethod:  http.MethodGet,
		})
	}
	out = append(out,
		MappingProposal{
			CanonicalField:  "symbol",
			SourceType:      models.SourceTypeRest,
			EntityType:      "ticker",
			VendorFieldPath: "symbol",
			Transformation:  "identity",
			EndpointPath:    "/api/v3/ticker/24hr",
			EndpointMethod:  http.MethodGet,
		},
		MappingProposal{
			CanonicalField:  "timestamp",
			SourceType:      models.SourceTypeRest,
			EntityType:      "ticker",
			VendorFieldPath: "closeTime",
			Transformation:  "ms_to_datetime",
			EndpointPath:    "/api/v3/ticker/24hr",
			EndpointMethod:  http.MethodGet,
		},
	)
	return out
}

func (a *Binance) httpClient() *http.Client {
	if a != nil && a.HTTP != nil {
		return a.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func stringDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return nil
	}
	return &d
}
