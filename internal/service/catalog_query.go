package service

import (
	"context"

	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

type CatalogQueryService struct {
	Store repository.CatalogRepository
}

type CatalogProductsResult struct {
	Items []models.Product
	Total int64
}

type CatalogMappingsResult struct {
	Items []models.FieldMapping
	Total int64
}

func (s *CatalogQueryService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.Store.ListVendors(ctx)
}

func (s *CatalogQueryService) ListProducts(ctx context.Context, params repository.ListProductsParams) (CatalogProductsResult, error) {
	total, err := s.Store.CountProducts(ctx, params)
	if err != nil {
		return CatalogProductsResult{}, err
	}
	items, err := s.Store.ListProducts(ctx, params)
	if err != nil {
		return CatalogProductsResult{}, err
	}
	return CatalogProductsResult{Items: items, Total: total}, nil
}

func (s *CatalogQueryService) ListMappings(ctx context.Context, params repository.ListMappingsParams) (CatalogMappingsResult, error) {
	total, err := s.Store.CountFieldMappings(ctx, params)
	if err != nil {
		return CatalogMappingsResult{}, err
	}
	items, err := s.Store.ListFieldMappings(ctx, params)
	if err != nil {
		return CatalogMappingsResult{}, err
	}
	return CatalogMappingsResult{Items: items, Total: total}, nil
}

func (s *CatalogQueryService) ListEndpoints(ctx context.Context, vendorName string) ([]models.RestEndpoint, error) {
	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, &NotFoundError{Kind: "vendor", Key: vendorName}
	}
	return s.Store.ListEndpointsByVendor(ctx, vendor.VendorID)
}

func (s *CatalogQueryService) ListChannels(ctx context.Context, vendorName string) ([]models.WebSocketChannel, error) {
	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, &NotFoundError{Kind: "vendor", Key: vendorName}
	}
	return s.Store.ListChannelsByVendor(ctx, vendor.VendorID)
}

func (s *CatalogQueryService) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	return s.Store.ListSyncStates(ctx)
}
