package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"exchangecatalog/internal/models"
)

func newMappingFixture() (*stubRepo, *MappingService) {
	repo := newStubRepo()
	repo.seedTicker("symbol", "last_price", "bid_price", "ask_price", "volume_24h", "timestamp")
	return repo, &MappingService{Store: repo}
}

func TestRegisterMapping_Idempotent(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	in := MappingInput{
		CanonicalField:  "last_price",
		SourceType:      "websocket",
		EntityType:      "ticker",
		VendorFieldPath: "last",
		Transformation:  "string_to_numeric",
		ChannelName:     "ticker",
	}
	created, err := svc.RegisterMapping(context.Background(), "korbit", in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !created {
		t.Fatal("first registration should create")
	}
	created, err = svc.RegisterMapping(context.Background(), "korbit", in)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if created {
		t.Fatal("second registration must be a no-op")
	}
	if len(repo.mappings) != 1 {
		t.Fatalf("expected exactly 1 stored mapping, got %d", len(repo.mappings))
	}
}

func TestRegisterMapping_UnknownVendor(t *testing.T) {
	_, svc := newMappingFixture()
	_, err := svc.RegisterMapping(context.Background(), "zaif", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRegisterMapping_UnknownCanonicalField(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	_, err := svc.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "funding_rate", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "funding", ChannelName: "ticker",
	})
	var unknown *UnknownCanonicalFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCanonicalFieldError, got %v", err)
	}
}

func TestRegisterMapping_UnknownSource(t *testing.T) {
	repo, svc := newMappingFixture()
	repo.addVendor("korbit")

	_, err := svc.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	})
	var unknown *UnknownSourceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSourceError, got %v", err)
	}
}

func TestRegisterMapping_SourceShapeConflicts(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("binance")
	repo.addEndpoint(vendor.VendorID, "/api/v3/ticker/24hr", "GET")
	repo.addChannel(vendor.VendorID, "ticker")

	_, err := svc.RegisterMapping(context.Background(), "binance", MappingInput{
		CanonicalField: "last_price", SourceType: "rest", EntityType: "ticker",
		VendorFieldPath: "lastPrice",
		EndpointPath:    "/api/v3/ticker/24hr", EndpointMethod: "GET",
		ChannelName: "ticker",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for rest+channel, got %v", err)
	}
}

func TestRegisterBatch_AccumulatesPerRecord(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	inputs := []MappingInput{
		{CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "last", ChannelName: "ticker"},
		{CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "last", ChannelName: "ticker"}, // duplicate
		{CanonicalField: "not_a_field", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "x", ChannelName: "ticker"},
		{CanonicalField: "bid_price", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "bid", ChannelName: "missing"},
	}
	result, err := svc.RegisterBatch(context.Background(), "korbit", inputs, false)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if result.Created != 1 || result.Skipped != 2 || result.Failed != 1 {
		t.Fatalf("unexpected summary %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 accumulated error, got %d", len(result.Errors))
	}
}

func TestRegisterBatch_DryRunDoesNotWrite(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	inputs := []MappingInput{
		{CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "last", ChannelName: "ticker"},
		{CanonicalField: "not_a_field", SourceType: "websocket", EntityType: "ticker", VendorFieldPath: "x", ChannelName: "ticker"},
	}
	dry, err := svc.RegisterBatch(context.Background(), "korbit", inputs, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(repo.mappings) != 0 {
		t.Fatalf("dry run must not write, found %d mappings", len(repo.mappings))
	}

	real, err := svc.RegisterBatch(context.Background(), "korbit", inputs, false)
	if err != nil {
		t.Fatalf("real run: %v", err)
	}
	if dry.Created != real.Created || dry.Skipped != real.Skipped || dry.Failed != real.Failed {
		t.Fatalf("dry run decisions diverge: dry %+v real %+v", dry, real)
	}
}

func TestResolve_PriorityWins(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("bitmart")
	repo.addChannel(vendor.VendorID, "spot/ticker")

	register := func(path string, priority int) {
		_, err := svc.RegisterMapping(context.Background(), "bitmart", MappingInput{
			CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
			VendorFieldPath: path, Priority: priority, ChannelName: "spot/ticker",
		})
		if err != nil {
			t.Fatalf("register %s: %v", path, err)
		}
	}
	register("data[].close_24h", 0)
	register("data[].last_price", 10)

	resolution, err := svc.Resolve(context.Background(), "bitmart", "ticker", "websocket")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var last *ResolvedField
	for i := range resolution.Fields {
		if resolution.Fields[i].CanonicalField == "last_price" {
			last = &resolution.Fields[i]
		}
	}
	if last == nil || !last.Mapped {
		t.Fatal("last_price should resolve")
	}
	if last.VendorFieldPath != "data[].last_price" {
		t.Fatalf("priority 10 mapping should win, got %s", last.VendorFieldPath)
	}
}

func TestResolve_TieBreakMostRecent(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	channel := repo.addChannel(vendor.VendorID, "ticker")

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()
	for _, m := range []struct {
		path string
		at   time.Time
	}{{"old_path", older}, {"new_path", newer}} {
		field, _ := repo.GetCanonicalFieldByName(context.Background(), "last_price")
		repo.mappings = append(repo.mappings, modelFieldMapping(repo, vendor.VendorID, field.CanonicalFieldID, channel.ChannelID, m.path, 5, m.at))
	}

	resolution, err := svc.Resolve(context.Background(), "korbit", "ticker", "websocket")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, f := range resolution.Fields {
		if f.CanonicalField == "last_price" && f.VendorFieldPath != "new_path" {
			t.Fatalf("most recent mapping should win ties, got %s", f.VendorFieldPath)
		}
	}
}

func TestResolve_ReportsUnmapped(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	if _, err := svc.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resolution, err := svc.Resolve(context.Background(), "korbit", "ticker", "websocket")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolution.Fields) != 6 {
		t.Fatalf("expected all 6 required fields reported, got %d", len(resolution.Fields))
	}
	mapped := 0
	for _, f := range resolution.Fields {
		if f.Mapped {
			mapped++
		}
	}
	if mapped != 1 {
		t.Fatalf("expected 1 mapped field, got %d", mapped)
	}
}

func modelFieldMapping(repo *stubRepo, vendorID, fieldID, channelID uint64, path string, priority int, createdAt time.Time) models.FieldMapping {
	return models.FieldMapping{
		MappingID:        repo.id(),
		VendorID:         vendorID,
		CanonicalFieldID: fieldID,
		SourceType:       "websocket",
		EntityType:       "ticker",
		VendorFieldPath:  path,
		ChannelID:        &channelID,
		Priority:         priority,
		IsActive:         true,
		CreatedAt:        createdAt,
	}
}

func TestSetActive(t *testing.T) {
	repo, svc := newMappingFixture()
	vendor := repo.addVendor("korbit")
	repo.addChannel(vendor.VendorID, "ticker")

	if _, err := svc.RegisterMapping(context.Background(), "korbit", MappingInput{
		CanonicalField: "last_price", SourceType: "websocket", EntityType: "ticker",
		VendorFieldPath: "last", ChannelName: "ticker",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	id := repo.mappings[0].MappingID
	if err := svc.SetActive(context.Background(), id, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	resolution, err := svc.Resolve(context.Background(), "korbit", "ticker", "websocket")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, f := range resolution.Fields {
		if f.Mapped {
			t.Fatal("deactivated mapping must not resolve")
		}
	}
}
