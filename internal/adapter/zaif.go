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

// Zaif is a Japanese exchange with a REST-only public API; it publishes no
// websocket channels. Pairs come back from /api/1/currency_pairs/all as
// "btc_jpy" style identifiers and ticker values are already numeric, so the
// mappings use identity transforms.
type Zaif struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	BaseURL string
}

func (a *Zaif) VendorInfo() VendorInfo {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		base = "https://api.zaif.jp"
	}
	return VendorInfo{
		Name:        "zaif",
		DisplayName: "Zaif",
		BaseURL:     base,
	}
}

func (a *Zaif) LinkStrategy() string { return "shared_endpoint" }

func (a *Zaif) RestEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			Path:        "/api/1/currency_pairs/all",
			Method:      http.MethodGet,
			Description: "All currency pairs with trading rules",
			ResponseSchema: mustJSON(map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"currency_pair": map[string]any{"type": "string"},
						"name":          map[string]any{"type": "string"},
						"item_unit_min": map[string]any{"type": "number"},
						"aux_unit_step": map[string]any{"type": "number"},
					},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/api/1/ticker/{currency_pair}",
			Method:      http.MethodGet,
			Description: "24-hour ticker data for a currency pair",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"last":   map[string]any{"type": "number"},
					"high":   map[string]any{"type": "number"},
					"low":    map[string]any{"type": "number"},
					"vwap":   map[string]any{"type": "number"},
					"volume": map[string]any{"type": "number"},
					"bid":    map[string]any{"type": "number"},
					"ask":    map[string]any{"type": "number"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:        "/api/1/last_price/{currency_pair}",
			Method:      http.MethodGet,
			Description: "Last trade price for a currency pair",
			ResponseSchema: mustJSON(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"last_price": map[string]any{"type": "number"},
				},
			}),
			RateLimitTier: "public",
		},
		{
			Path:          "/api/1/depth/{currency_pair}",
			Method:        http.MethodGet,
			Description:   "Order book depth for a currency pair",
			RateLimitTier: "public",
		},
		{
			Path:          "/api/1/trades/{currency_pair}",
			Method:        http.MethodGet,
			Description:   "Recent trades for a currency pair",
			RateLimitTier: "public",
		},
	}
}

func (a *Zaif) WebSocketChannels() []ChannelDescriptor {
	return nil
}

func (a *Zaif) DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error) {
	info := a.VendorInfo()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.BaseURL+"/api/1/currency_pairs/all", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("zaif currency pairs: http %d", resp.StatusCode)
	}

	var parsed []struct {
		CurrencyPair string   `json:"currency_pair"`
		Name         string   `json:"name"`
		ItemUnitMin  *float64 `json:"item_unit_min"`
		AuxUnitStep  *float64 `json:"aux_unit_step"`
		IsToken      bool     `json:"is_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	products := make([]ProductDescriptor, 0, len(parsed))
	for _, pair := range parsed {
		parts := strings.Split(pair.CurrencyPair, "_")
		if len(parts) != 2 {
			if a.Logger != nil {
				a.Logger.Warn("skip malformed zaif pair", zap.String("pair", pair.CurrencyPair))
			}
			continue
		}
		base := strings.ToUpper(parts[0])
		quote := strings.ToUpper(parts[1])
		products = append(products, ProductDescriptor{
			Symbol:         base + "-" + quote,
			BaseCurrency:   base,
			QuoteCurrency:  quote,
			Status:         models.ProductStatusOnline,
			MinOrderSize:   floatDecimal(pair.ItemUnitMin),
			PriceIncrement: floatDecimal(pair.AuxUnitStep),
			VendorMetadata: mustJSON(map[string]any{
				"currency_pair": pair.CurrencyPair,
				"name":          pair.Name,
				"is_token":      pair.IsToken,
			}),
		})
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("zaif currency pairs: no currency pairs")
	}
	return products, nil
}

// Mappings covers the REST ticker payload plus the dedicated last_price
// endpoint. Zaif returns plain numbers, not strings.
func (a *Zaif) Mappings() []MappingProposal {
	ticker := []struct{ path, field string }{
		{"last", "last_price"},
		{"high", "high_24h"},
		{"low", "low_24h"},
		{"volume", "volume_24h"},
		{"bid", "bid_price"},
		{"ask", "ask_price"},
	}
	out := make([]MappingProposal, 0, len(ticker)+1)
	for _, m := range ticker {
		out = append(out, MappingProposal{
			CanonicalField:  m.field,
			SourceType:      models.SourceTypeRest,
			EntityType:      "ticker",
			VendorFieldPath: m.path,
			Transformation:  "identity",
			Priority:        10,
			EndpointPath:    "/api/1/ticker/{currency_pair}",
			EndpointMethod:  http.MethodGet,
		})
	}
	out = append(out, MappingProposal{
		CanonicalField:  "last_price",
		SourceType:      models.SourceTypeRest,
		EntityType:      "ticker",
		VendorFieldPath: "last_price",
		Transformation:  "identity",
		Priority:        0,
		EndpointPath:    "/api/1/last_price/{currency_pair}",
		EndpointMethod:  http.MethodGet,
	})
	return out
}

func (a *Zaif) httpClient() *http.Client {
	if a != nil && a.HTTP != nil {
		return a.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}
