package service

import (
	"context"
	"testing"
)

func TestCoverage_DivisionByZeroGuard(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor("zaif")
	svc := &CoverageService{Store: repo}

	summary, err := svc.TickerCoverage(context.Background(), "zaif")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if summary.FieldsDefined != 0 || summary.FieldsMapped != 0 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.CoveragePercent != 0 {
		t.Fatalf("expected 0 percent with no defined fields, got %v", summary.CoveragePercent)
	}
}

func TestCoverage_Monotonic(t *testing.T) {
	repo, mapper := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")
	svc := &CoverageService{Store: repo}

	before, err := svc.TickerCoverage(context.Background(), "korbit")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if before.FieldsMapped != 0 {
		t.Fatalf("expected 0 mapped before registration, got %d", before.FieldsMapped)
	}

	if _, err := mapper.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	after, err := svc.TickerCoverage(context.Background(), "korbit")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if after.FieldsMapped != before.FieldsMapped+1 {
		t.Fatalf("adding a mapping must increase fields_mapped: before %d after %d", before.FieldsMapped, after.FieldsMapped)
	}

	if err := mapper.SetActive(context.Background(), repo.mappings[0].MappingID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	again, err := svc.TickerCoverage(context.Background(), "korbit")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if again.FieldsMapped != before.FieldsMapped {
		t.Fatalf("deactivating must restore fields_mapped, got %d", again.FieldsMapped)
	}
}

func TestCoverage_PercentRounding(t *testing.T) {
	repo, mapper := newMappingFixture() // 6 ticker fields
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")
	svc := &CoverageService{Store: repo}

	if _, err := mapper.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	summary, err := svc.TickerCoverage(context.Background(), "korbit")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	// 1 of 6 = 16.666... -> 16.7
	if summary.CoveragePercent != 16.7 {
		t.Fatalf("expected 16.7, got %v", summary.CoveragePercent)
	}
}

func TestLeaders_Ordering(t *testing.T) {
	repo, mapper := newMappingFixture()
	svc := &CoverageService{Store: repo}

	registerFor := func(vendorName string, fields ...string) {
		vendor := repo.addVendor(vendorName)
		repo.addChannel(vendor.VendorID, "ticker")
		for _, f := range fields {
			if _, err := mapper.RegisterMapping(context.Background(), vendorName, MappingInput{
				CanonicalField: f, SourceType: "websocket", EntityType: "ticker",
				VendorFieldPath: "p_" + f, ChannelName: "ticker",
			}); err != nil {
				t.Fatalf("register %s/%s: %v", vendorName, f, err)
			}
		}
	}
	registerFor("bitmart", "last_price", "bid_price")
	registerFor("korbit", "last_price", "bid_price")
	registerFor("binance", "last_price", "bid_price", "ask_price")

	leaders, err := svc.Leaders(context.Background(), 10)
	if err != nil {
		t.Fatalf("leaders: %v", err)
	}
	if len(leaders) != 3 {
		t.Fatalf("expected 3 leaders, got %d", len(leaders))
	}
	if leaders[0].VendorName != "binance" {
		t.Fatalf("binance should lead, got %s", leaders[0].VendorName)
	}
	// Tie between bitmart and korbit resolves by name ascending.
	if leaders[1].VendorName != "bitmart" || leaders[2].VendorName != "korbit" {
		t.Fatalf("tie must order by vendor name: %s, %s", leaders[1].VendorName, leaders[2].VendorName)
	}

	top, err := svc.Leaders(context.Background(), 1)
	if err != nil {
		t.Fatalf("leaders limit: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("limit not applied, got %d", len(top))
	}
}

func TestStats(t *testing.T) {
	repo, mapper := newMappingFixture()
	svc := &CoverageService{Store: repo}

	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")
	repo.addProduct(vendor.VendorID, "BTC-KRW")
	repo.addProduct(vendor.VendorID, "ETH-KRW")
	if _, err := mapper.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVendors != 1 || stats.TotalProducts != 2 || stats.TotalMappings != 1 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.AverageCoverage != 16.7 {
		t.Fatalf("expected average 16.7, got %v", stats.AverageCoverage)
	}
	if len(stats.Leaders) != 1 || stats.Leaders[0].VendorName != "korbit" {
		t.Fatalf("unexpected leaders %+v", stats.Leaders)
	}
}
