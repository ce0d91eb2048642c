package linking

import (
	"strings"
	"sync"

	"exchangecatalog/internal/models"
)

// EndpointLink and ChannelLink are strategy outputs, persisted by the
// linking engine after cross-vendor validation.
type EndpointLink struct {
	ProductID  uint64
	EndpointID uint64
	Role       string
}

type ChannelLink struct {
	ProductID uint64
	ChannelID uint64
	Role      string
}

type LinkSet struct {
	Endpoints []EndpointLink
	Channels  []ChannelLink
}

// Strategy decides which endpoints and channels serve which products for
// one vendor. Strategies never touch storage.
type Strategy func(products []models.Product, endpoints []models.RestEndpoint, channels []models.WebSocketChannel) LinkSet

// Registry holds strategies by name. A vendor without a registered
// strategy is reported as not implemented, never an error.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	r.Register("shared_endpoint", SharedEndpoint)
	r.Register("per_symbol_channel", PerSymbolChannel)
	return r
}

func (r *Registry) Register(name string, s Strategy) {
	if r == nil || name == "" || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = s
}

func (r *Registry) Get(name string) (Strategy, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// SharedEndpoint links every product to every public market-data
// endpoint: the vendor serves all symbols from the same paths,
// parameterized by query.
func SharedEndpoint(products []models.Product, endpoints []models.RestEndpoint, channels []models.WebSocketChannel) LinkSet {
	var out LinkSet
	for _, e := range endpoints {
		role := roleForName(e.Path)
		if role == "" || e.AuthenticationRequired {
			continue
		}
		for _, p := range products {
			out.Endpoints = append(out.Endpoints, EndpointLink{
				ProductID:  p.ProductID,
				EndpointID: e.EndpointID,
				Role:       role,
			})
		}
	}
	return out
}

// PerSymbolChannel links every product to each public market-data
// channel; the subscription key carries the symbol, so one channel row
// covers all products.
func PerSymbolChannel(products []models.Product, endpoints []models.RestEndpoint, channels []models.WebSocketChannel) LinkSet {
	var out LinkSet
	for _, c := range channels {
		role := roleForName(c.ChannelName)
		if role == "" || c.AuthenticationRequired {
			continue
		}
		for _, p := range products {
			out.Channels = append(out.Channels, ChannelLink{
				ProductID: p.ProductID,
				ChannelID: c.ChannelID,
				Role:      role,
			})
		}
	}
	return out
}

// roleForName classifies an endpoint path or channel name into a link
// role. Unclassified names produce no link.
func roleForName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "ticker"):
		return "ticker"
	case strings.Contains(lower, "orderbook"), strings.Contains(lower, "depth"), strings.Contains(lower, "book"):
		return "order_book"
	case strings.Contains(lower, "trade"):
		return "trade"
	case strings.Contains(lower, "kline"), strings.Contains(lower, "candle"):
		return "candle"
	default:
		return ""
	}
}
