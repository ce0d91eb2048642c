package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"exchangecatalog/internal/repository"
)

// CoverageService aggregates mapping coverage. Everything is computed on
// read; coverage moves whenever a mapping is added or deactivated.
type CoverageService struct {
	Store  repository.CatalogRepository
	Logger *zap.Logger
}

type CoverageSummary struct {
	VendorName      string  `json:"vendor_name"`
	DataTypeName    string  `json:"data_type_name"`
	FieldsDefined   int     `json:"fields_defined"`
	FieldsMapped    int     `json:"fields_mapped"`
	CoveragePercent float64 `json:"coverage_percent"`
}

type Stats struct {
	TotalVendors    int64             `json:"total_vendors"`
	TotalProducts   int64             `json:"total_products"`
	TotalMappings   int64             `json:"total_mappings"`
	AverageCoverage float64           `json:"average_coverage"`
	Leaders         []CoverageSummary `json:"leaders"`
}

// Coverage reports how many canonical fields of the entity type have at
// least one active mapping for the vendor, across both source types.
func (s *CoverageService) Coverage(ctx context.Context, vendorName, entityType string) (CoverageSummary, error) {
	out := CoverageSummary{VendorName: vendorName, DataTypeName: entityType}

	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return out, err
	}
	if vendor == nil {
		return out, &NotFoundError{Kind: "vendor", Key: vendorName}
	}
	required, err := s.Store.ListRequiredFields(ctx, entityType)
	if err != nil {
		return out, err
	}
	mappings, err := s.Store.ListActiveMappingsByEntity(ctx, vendor.VendorID, entityType)
	if err != nil {
		return out, err
	}

	mapped := make(map[uint64]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.CanonicalFieldID] = true
	}
	out.FieldsDefined = len(required)
	for _, field := range required {
		if mapped[field.CanonicalFieldID] {
			out.FieldsMapped++
		}
	}
	out.CoveragePercent = coveragePercent(out.FieldsMapped, out.FieldsDefined)
	return out, nil
}

func (s *CoverageService) TickerCoverage(ctx context.Context, vendorName string) (CoverageSummary, error) {
	return s.Coverage(ctx, vendorName, "ticker")
}

// Leaders ranks vendors by ticker coverage, percent desc, vendor name asc.
func (s *CoverageService) Leaders(ctx context.Context, limit int) ([]CoverageSummary, error) {
	if limit <= 0 {
		limit = 5
	}
	vendors, err := s.Store.ListVendors(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]CoverageSummary, 0, len(vendors))
	for _, v := range vendors {
		summary, err := s.Coverage(ctx, v.VendorName, "ticker")
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CoveragePercent != summaries[j].CoveragePercent {
			return summaries[i].CoveragePercent > summaries[j].CoveragePercent
		}
		return summaries[i].VendorName < summaries[j].VendorName
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Stats aggregates catalog totals and the ticker coverage leaderboard.
func (s *CoverageService) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error

	if out.TotalVendors, err = s.Store.CountVendors(ctx); err != nil {
		return out, err
	}
	if out.TotalProducts, err = s.Store.CountProducts(ctx, repository.ListProductsParams{}); err != nil {
		return out, err
	}
	if out.TotalMappings, err = s.Store.CountFieldMappings(ctx, repository.ListMappingsParams{}); err != nil {
		return out, err
	}

	vendors, err := s.Store.ListVendors(ctx)
	if err != nil {
		return out, err
	}
	total := 0.0
	leaders := make([]CoverageSummary, 0, len(vendors))
	for _, v := range vendors {
		summary, err := s.Coverage(ctx, v.VendorName, "ticker")
		if err != nil {
			return out, err
		}
		total += summary.CoveragePercent
		leaders = append(leaders, summary)
	}
	if len(vendors) > 0 {
		out.AverageCoverage = math.Round(total/float64(len(vendors))*10) / 10
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		if leaders[i].CoveragePercent != leaders[j].CoveragePercent {
			return leaders[i].CoveragePercent > leaders[j].CoveragePercent
		}
		return leaders[i].VendorName < leaders[j].VendorName
	})
	if len(leaders) > 5 {
		leaders = leaders[:5]
	}
	out.Leaders = leaders
	return out, nil
}

// coveragePercent rounds to one decimal and guards defined == 0.
func coveragePercent(mapped, defined int) float64 {
	if defined == 0 {
		return 0
	}
	return math.Round(float64(mapped)/float64(defined)*1000) / 10
}
