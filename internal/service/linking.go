package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"exchangecatalog/internal/linking"
	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

// LinkingService associates products with the endpoints and channels
// that carry their market data. Vendor-specific decisions live in
// linking strategies; the service only validates and persists.
type LinkingService struct {
	Store      repository.CatalogRepository
	Strategies *linking.Registry
	Logger     *zap.Logger
}

// LinkResult summarizes one strategy application. Implemented is false
// when the vendor has no registered strategy; that is not an error.
type LinkResult struct {
	Vendor        string   `json:"vendor"`
	Strategy      string   `json:"strategy"`
	Implemented   bool     `json:"implemented"`
	EndpointLinks int      `json:"endpoint_links"`
	ChannelLinks  int      `json:"channel_links"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors,omitempty"`
}

// LinkProductToEndpoint links one product to one endpoint under a role.
// Cross-vendor pairs fail before anything is written.
func (s *LinkingService) LinkProductToEndpoint(ctx context.Context, productID, endpointID uint64, role string) error {
	product, err := s.Store.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return &NotFoundError{Kind: "product", Key: strconv.FormatUint(productID, 10)}
	}
	endpoint, err := s.Store.GetEndpointByID(ctx, endpointID)
	if err != nil {
		return err
	}
	if endpoint == nil {
		return &NotFoundError{Kind: "endpoint", Key: strconv.FormatUint(endpointID, 10)}
	}
	if product.VendorID != endpoint.VendorID {
		return &CrossVendorLinkError{ProductVendorID: product.VendorID, SourceVendorID: endpoint.VendorID}
	}
	return s.Store.UpsertProductEndpointLink(ctx, &models.ProductEndpointLink{
		ProductID:  productID,
		EndpointID: endpointID,
		Role:       role,
	})
}

// LinkProductToChannel is the channel counterpart of
// LinkProductToEndpoint.
func (s *LinkingService) LinkProductToChannel(ctx context.Context, productID, channelID uint64, role string) error {
	product, err := s.Store.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return &NotFoundError{Kind: "product", Key: strconv.FormatUint(productID, 10)}
	}
	channel, err := s.Store.GetChannelByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel == nil {
		return &NotFoundError{Kind: "channel", Key: strconv.FormatUint(channelID, 10)}
	}
	if product.VendorID != channel.VendorID {
		return &CrossVendorLinkError{ProductVendorID: product.VendorID, SourceVendorID: channel.VendorID}
	}
	return s.Store.UpsertProductChannelLink(ctx, &models.ProductChannelLink{
		ProductID: productID,
		ChannelID: channelID,
		Role:      role,
	})
}

// ApplyStrategy runs the named strategy over the vendor's full catalog
// and persists the resulting link set idempotently. Per-link failures
// are accumulated; the pass continues.
func (s *LinkingService) ApplyStrategy(ctx context.Context, vendorName, strategyName string) (LinkResult, error) {
	result := LinkResult{Vendor: vendorName, Strategy: strategyName}

	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return result, err
	}
	if vendor == nil {
		return result, &NotFoundError{Kind: "vendor", Key: vendorName}
	}
	strategy, ok := s.Strategies.Get(strategyName)
	if !ok {
		if s.Logger != nil {
			s.Logger.Info("no linking strategy registered",
				zap.String("vendor", vendorName),
				zap.String("strategy", strategyName))
		}
		return result, nil
	}
	result.Implemented = true

	var products []models.Product
	for offset := 0; ; offset += 500 {
		page, err := s.Store.ListProducts(ctx, repository.ListProductsParams{
			VendorID: &vendor.VendorID,
			Limit:    500,
			Offset:   offset,
		})
		if err != nil {
			return result, err
		}
		products = append(products, page...)
		if len(page) < 500 {
			break
		}
	}
	endpoints, err := s.Store.ListEndpointsByVendor(ctx, vendor.VendorID)
	if err != nil {
		return result, err
	}
	channels, err := s.Store.ListChannelsByVendor(ctx, vendor.VendorID)
	if err != nil {
		return result, err
	}

	set := strategy(products, endpoints, channels)
	for _, link := range set.Endpoints {
		err := s.Store.UpsertProductEndpointLink(ctx, &models.ProductEndpointLink{
			ProductID:  link.ProductID,
			EndpointID: link.EndpointID,
			Role:       link.Role,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("endpoint link %d->%d: %v", link.ProductID, link.EndpointID, err))
			continue
		}
		result.EndpointLinks++
	}
	for _, link := range set.Channels {
		err := s.Store.UpsertProductChannelLink(ctx, &models.ProductChannelLink{
			ProductID: link.ProductID,
			ChannelID: link.ChannelID,
			Role:      link.Role,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("channel link %d->%d: %v", link.ProductID, link.ChannelID, err))
			continue
		}
		result.ChannelLinks++
	}
	return result, nil
}
