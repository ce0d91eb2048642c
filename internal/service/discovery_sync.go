package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"exchangecatalog/internal/adapter"
	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

// DiscoveryService runs one catalog pass per vendor adapter: upsert the
// vendor, its endpoints, channels and live-discovered products in one
// transaction, then register the adapter's proposed mappings and apply
// its linking strategy.
type DiscoveryService struct {
	Store    repository.CatalogRepository
	Adapters *adapter.Registry
	Mappings *MappingService
	Linking  *LinkingService
	Logger   *zap.Logger

	RegisterMappings bool
	ApplyLinks       bool
}

type DiscoverResult struct {
	Vendor    string      `json:"vendor"`
	DryRun    bool        `json:"dry_run"`
	Endpoints int         `json:"endpoints"`
	Channels  int         `json:"channels"`
	Products  int         `json:"products"`
	Skipped   int         `json:"skipped"`
	Mappings  BatchResult `json:"mappings"`
	Links     LinkResult  `json:"links"`
}

// Discover runs one pass for a single vendor. Dry-run makes the same
// decisions, including which mappings would be skipped, without writing.
func (s *DiscoveryService) Discover(ctx context.Context, vendorName string, dryRun bool) (DiscoverResult, error) {
	result := DiscoverResult{Vendor: vendorName, DryRun: dryRun}

	a, ok := s.Adapters.Get(vendorName)
	if !ok {
		return result, &NotFoundError{Kind: "adapter", Key: vendorName}
	}
	info := a.VendorInfo()
	endpoints := a.RestEndpoints()
	channels := a.WebSocketChannels()

	products, err := a.DiscoverProducts(ctx)
	if err != nil {
		if !dryRun {
			s.writeSyncError(ctx, discoveryScope(vendorName), err)
		}
		return result, err
	}

	kept := make([]adapter.ProductDescriptor, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Symbol) == "" {
			result.Skipped++
			if s.Logger != nil {
				s.Logger.Warn("skip product without symbol", zap.String("vendor", vendorName))
			}
			continue
		}
		kept = append(kept, p)
	}
	result.Endpoints = len(endpoints)
	result.Channels = len(channels)
	result.Products = len(kept)

	if !dryRun {
		if err := s.persist(ctx, info, endpoints, channels, kept); err != nil {
			s.writeSyncError(ctx, discoveryScope(vendorName), err)
			return result, err
		}
	}

	if s.RegisterMappings && s.Mappings != nil {
		mapped, err := s.Mappings.RegisterBatch(ctx, info.Name, mappingInputs(a.Mappings()), dryRun)
		if err != nil {
			// Dry-run against a vendor not yet in the catalog has no
			// sources to validate; report zero instead of failing.
			var nf *NotFoundError
			if !(dryRun && errors.As(err, &nf)) {
				return result, err
			}
		}
		result.Mappings = mapped
	}

	if s.ApplyLinks && !dryRun && s.Linking != nil {
		links, err := s.Linking.ApplyStrategy(ctx, info.Name, a.LinkStrategy())
		if err != nil {
			return result, err
		}
		result.Links = links
	}
	return result, nil
}

// DiscoverAll runs a pass for every named vendor. Per-vendor failures
// are logged and the loop continues.
func (s *DiscoveryService) DiscoverAll(ctx context.Context, vendors []string, dryRun bool) []DiscoverResult {
	if len(vendors) == 0 {
		vendors = s.Adapters.Names()
	}
	out := make([]DiscoverResult, 0, len(vendors))
	for _, name := range vendors {
		result, err := s.Discover(ctx, name, dryRun)
		if err != nil && s.Logger != nil {
			s.Logger.Warn("vendor discovery failed", zap.String("vendor", name), zap.Error(err))
		}
		out = append(out, result)
	}
	return out
}

func (s *DiscoveryService) persist(ctx context.Context, info adapter.VendorInfo, endpoints []adapter.EndpointDescriptor, channels []adapter.ChannelDescriptor, products []adapter.ProductDescriptor) error {
	now := time.Now().UTC()

	vendor := &models.Vendor{
		VendorName:   info.Name,
		DisplayName:  info.DisplayName,
		BaseURL:      info.BaseURL,
		WebsocketURL: info.WebsocketURL,
		Enabled:      true,
		UpdatedAt:    now,
	}
	if err := s.Store.UpsertVendor(ctx, vendor); err != nil {
		return err
	}

	return s.Store.InTx(ctx, func(tx *gorm.DB) error {
		for _, e := range endpoints {
			method := e.Method
			if method == "" {
				method = "GET"
			}
			item := &models.RestEndpoint{
				VendorID:               vendor.VendorID,
				Path:                   e.Path,
				Method:                 method,
				AuthenticationRequired: e.AuthenticationRequired,
				Description:            e.Description,
				QueryParameters:        e.QueryParameters,
				ResponseSchema:         e.ResponseSchema,
				RateLimitTier:          e.RateLimitTier,
				LastSeenAt:             now,
			}
			if err := s.Store.UpsertEndpointTx(ctx, tx, item); err != nil {
				return err
			}
		}
		for _, c := range channels {
			item := &models.WebSocketChannel{
				VendorID:               vendor.VendorID,
				ChannelName:            c.ChannelName,
				AuthenticationRequired: c.AuthenticationRequired,
				Description:            c.Description,
				SubscribeFormat:        c.SubscribeFormat,
				UnsubscribeFormat:      c.UnsubscribeFormat,
				MessageTypes:           c.MessageTypes,
				MessageSchema:          c.MessageSchema,
				VendorMetadata:         c.VendorMetadata,
				LastSeenAt:             now,
			}
			if err := s.Store.UpsertChannelTx(ctx, tx, item); err != nil {
				return err
			}
		}
		for _, p := range products {
			item := &models.Product{
				VendorID:       vendor.VendorID,
				Symbol:         p.Symbol,
				BaseCurrency:   p.BaseCurrency,
				QuoteCurrency:  p.QuoteCurrency,
				Status:         p.Status,
				MinOrderSize:   p.MinOrderSize,
				MaxOrderSize:   p.MaxOrderSize,
				PriceIncrement: p.PriceIncrement,
				VendorMetadata: p.VendorMetadata,
				LastSeenAt:     now,
			}
			if err := s.Store.UpsertProductTx(ctx, tx, item); err != nil {
				return err
			}
		}

		state := &models.SyncState{
			Scope:         discoveryScope(info.Name),
			LastAttemptAt: &now,
			LastSuccessAt: &now,
			StatsJSON: statsJSON(map[string]int{
				"endpoints": len(endpoints),
				"channels":  len(channels),
				"products":  len(products),
			}),
		}
		return s.Store.SaveSyncStateTx(ctx, tx, state)
	})
}

func (s *DiscoveryService) writeSyncError(ctx context.Context, scope string, err error) {
	if s.Logger != nil {
		s.Logger.Warn("discovery failed", zap.String("scope", scope), zap.Error(err))
	}
	now := time.Now().UTC()
	_ = s.Store.InTx(ctx, func(tx *gorm.DB) error {
		state := &models.SyncState{
			Scope:         scope,
			LastAttemptAt: &now,
			LastError:     strPtr(err.Error()),
		}
		return s.Store.SaveSyncStateTx(ctx, tx, state)
	})
}

func discoveryScope(vendor string) string {
	return "discover:" + vendor
}

func mappingInputs(proposals []adapter.MappingProposal) []MappingInput {
	out := make([]MappingInput, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, MappingInput{
			CanonicalField:  p.CanonicalField,
			SourceType:      p.SourceType,
			EntityType:      p.EntityType,
			VendorFieldPath: p.VendorFieldPath,
			Transformation:  p.Transformation,
			Priority:        p.Priority,
			EndpointPath:    p.EndpointPath,
			EndpointMethod:  p.EndpointMethod,
			ChannelName:     p.ChannelName,
		})
	}
	return out
}

func statsJSON(stats map[string]int) datatypes.JSON {
	if len(stats) == 0 {
		return datatypes.JSON([]byte("null"))
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(payload)
}

func strPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
