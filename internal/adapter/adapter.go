package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// VendorInfo identifies an exchange and its public entry points.
type VendorInfo struct {
	Name         string
	DisplayName  string
	BaseURL      string
	WebsocketURL string
}

// EndpointDescriptor is the shape a vendor adapter hands to the catalog
// for one REST endpoint.
type EndpointDescriptor struct {
	Path                   string
	Method                 string
	AuthenticationRequired bool
	Description            string
	QueryParameters        datatypes.JSON
	ResponseSchema         datatypes.JSON
	RateLimitTier          string
}

// ChannelDescriptor describes one WebSocket channel offered by a vendor.
type ChannelDescriptor struct {
	ChannelName            string
	AuthenticationRequired bool
	Description            string
	SubscribeFormat        datatypes.JSON
	UnsubscribeFormat      datatypes.JSON
	MessageTypes           datatypes.JSON
	MessageSchema          datatypes.JSON
	VendorMetadata         datatypes.JSON
}

// ProductDescriptor describes one tradable instrument.
type ProductDescriptor struct {
	Symbol         string
	BaseCurrency   string
	QuoteCurrency  string
	Status         string
	MinOrderSize   *decimal.Decimal
	MaxOrderSize   *decimal.Decimal
	PriceIncrement *decimal.Decimal
	VendorMetadata datatypes.JSON
}

// MappingProposal is one declarative field mapping an adapter proposes for
// its vendor. Exactly one of EndpointPath or ChannelName is set, matching
// SourceType.
type MappingProposal struct {
	CanonicalField  string
	SourceType      string
	EntityType      string
	VendorFieldPath string
	Transformation  string
	Priority        int
	EndpointPath    string
	EndpointMethod  string
	ChannelName     string
}

// Adapter is implemented once per exchange. Static catalog shape is
// declared inline; only product discovery touches the vendor API.
type Adapter interface {
	VendorInfo() VendorInfo
	RestEndpoints() []EndpointDescriptor
	WebSocketChannels() []ChannelDescriptor
	DiscoverProducts(ctx context.Context) ([]ProductDescriptor, error)
	Mappings() []MappingProposal
	LinkStrategy() string
}

// Registry holds adapters keyed by vendor name.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

func (r *Registry) Register(a Adapter) {
	if r == nil || a == nil {
		return
	}
	name := a.VendorInfo().Name
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
