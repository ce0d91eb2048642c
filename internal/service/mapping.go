package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

// MappingService registers vendor-field to canonical-field mappings and
// resolves the winning mapping per canonical field.
type MappingService struct {
	Store  repository.CatalogRepository
	Logger *zap.Logger
}

// MappingInput is one declarative mapping to register. Exactly one of
// EndpointPath or ChannelName must be set, matching SourceType.
type MappingInput struct {
	CanonicalField  string `json:"canonical_field"`
	SourceType      string `json:"source_type"`
	EntityType      string `json:"entity_type"`
	VendorFieldPath string `json:"vendor_field_path"`
	Transformation  string `json:"transformation"`
	Priority        int    `json:"priority"`
	EndpointPath    string `json:"endpoint_path,omitempty"`
	EndpointMethod  string `json:"endpoint_method,omitempty"`
	ChannelName     string `json:"channel_name,omitempty"`
}

// BatchResult summarizes one registration pass. Per-record errors are
// accumulated here, never raised individually.
type BatchResult struct {
	Vendor  string   `json:"vendor"`
	DryRun  bool     `json:"dry_run"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ResolvedField reports the winning mapping for one canonical field, or
// Mapped=false when the field has no active mapping.
type ResolvedField struct {
	CanonicalField  string         `json:"canonical_field"`
	Mapped          bool           `json:"mapped"`
	MappingID       uint64         `json:"mapping_id,omitempty"`
	VendorFieldPath string         `json:"vendor_field_path,omitempty"`
	Transformation  datatypes.JSON `json:"transformation,omitempty"`
	Priority        int            `json:"priority,omitempty"`
}

type Resolution struct {
	Vendor     string          `json:"vendor"`
	EntityType string          `json:"entity_type"`
	SourceType string          `json:"source_type"`
	Fields     []ResolvedField `json:"fields"`
}

// RegisterBatch registers a set of mappings for one vendor. A missing
// vendor aborts the pass; everything else is accumulated per record.
// Dry-run makes the same decisions without writing.
func (s *MappingService) RegisterBatch(ctx context.Context, vendorName string, inputs []MappingInput, dryRun bool) (BatchResult, error) {
	result := BatchResult{Vendor: vendorName, DryRun: dryRun}
	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return result, err
	}
	if vendor == nil {
		return result, &NotFoundError{Kind: "vendor", Key: vendorName}
	}

	for _, in := range inputs {
		created, err := s.registerOne(ctx, vendor, in, dryRun)
		var unknownField *UnknownCanonicalFieldError
		switch {
		case errors.As(err, &unknownField):
			// Not a schema error on our side: the vendor proposes fields the
			// canonical model does not define yet. Skip, keep the batch going.
			result.Skipped++
			if s.Logger != nil {
				s.Logger.Warn("mapping skipped, unknown canonical field",
					zap.String("vendor", vendorName),
					zap.String("vendor_field_path", in.VendorFieldPath),
					zap.String("canonical_field", in.CanonicalField))
			}
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s -> %s: %v", in.VendorFieldPath, in.CanonicalField, err))
			if s.Logger != nil {
				s.Logger.Warn("mapping registration failed",
					zap.String("vendor", vendorName),
					zap.String("vendor_field_path", in.VendorFieldPath),
					zap.String("canonical_field", in.CanonicalField),
					zap.Error(err))
			}
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

// RegisterMapping registers a single mapping and surfaces its error
// directly instead of accumulating.
func (s *MappingService) RegisterMapping(ctx context.Context, vendorName string, in MappingInput) (bool, error) {
	vendor, err := s.Store.GetVendorByName(ctx, vendorName)
	if err != nil {
		return false, err
	}
	if vendor == nil {
		return false, &NotFoundError{Kind: "vendor", Key: vendorName}
	}
	return s.registerOne(ctx, vendor, in, false)
}

func (s *MappingService) registerOne(ctx context.Context, vendor *models.Vendor, in MappingInput, dryRun bool) (bool, error) {
	path := strings.TrimSpace(in.VendorFieldPath)
	if path == "" {
		return false, fmt.Errorf("empty vendor field path")
	}

	field, err := s.Store.GetCanonicalFieldByName(ctx, in.CanonicalField)
	if err != nil {
		return false, err
	}
	if field == nil {
		return false, &UnknownCanonicalFieldError{FieldName: in.CanonicalField}
	}

	var endpointID, channelID *uint64
	switch in.SourceType {
	case models.SourceTypeRest:
		if in.ChannelName != "" {
			return false, &ConflictError{Reason: "rest mapping must not reference a channel"}
		}
		endpoint, err := s.Store.GetEndpointByPath(ctx, vendor.VendorID, in.EndpointPath, in.EndpointMethod)
		if err != nil {
			return false, err
		}
		if endpoint == nil {
			return false, &UnknownSourceError{SourceType: models.SourceTypeRest, Key: in.EndpointMethod + " " + in.EndpointPath}
		}
		endpointID = &endpoint.EndpointID
	case models.SourceTypeWebsocket:
		if in.EndpointPath != "" {
			return false, &ConflictError{Reason: "websocket mapping must not reference an endpoint"}
		}
		channel, err := s.Store.GetChannelByName(ctx, vendor.VendorID, in.ChannelName)
		if err != nil {
			return false, err
		}
		if channel == nil {
			return false, &UnknownSourceError{SourceType: models.SourceTypeWebsocket, Key: in.ChannelName}
		}
		channelID = &channel.ChannelID
	default:
		return false, fmt.Errorf("unsupported source type: %s", in.SourceType)
	}

	key := repository.FieldMappingKey{
		VendorID:         vendor.VendorID,
		CanonicalFieldID: field.CanonicalFieldID,
		SourceType:       in.SourceType,
		EntityType:       in.EntityType,
		VendorFieldPath:  path,
		EndpointID:       endpointID,
		ChannelID:        channelID,
	}
	existing, err := s.Store.FindFieldMapping(ctx, key)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if dryRun {
		return true, nil
	}

	item := &models.FieldMapping{
		VendorID:           vendor.VendorID,
		CanonicalFieldID:   field.CanonicalFieldID,
		SourceType:         in.SourceType,
		EntityType:         in.EntityType,
		VendorFieldPath:    path,
		EndpointID:         endpointID,
		ChannelID:          channelID,
		TransformationRule: transformJSON(in.Transformation),
		Priority:           in.Priority,
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}
	return s.Store.CreateFieldMapping(ctx, item)
}

// Resolve picks, per canonical field required by the entity type, the
// highest-priority active mapping; ties go to the most recently created.
// Unmapped fields are reported, not raised.
func (s *MappingService) Resolve(ctx context.Context, vendorName, entityType, sourceType string) (Resolution, error) {
	out := Resolution{Vendor: vendorName, EntityType: entityType, SourceType: sourceType}

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
	mappings, err := s.Store.ListActiveMappings(ctx, vendor.VendorID, entityType, sourceType)
	if err != nil {
		return out, err
	}

	// Mappings arrive ordered priority desc then created_at desc, so the
	// first hit per canonical field is the winner.
	winners := make(map[uint64]*models.FieldMapping, len(mappings))
	for i := range mappings {
		m := &mappings[i]
		if _, ok := winners[m.CanonicalFieldID]; !ok {
			winners[m.CanonicalFieldID] = m
		}
	}

	out.Fields = make([]ResolvedField, 0, len(required))
	for _, field := range required {
		resolved := ResolvedField{CanonicalField: field.FieldName}
		if m, ok := winners[field.CanonicalFieldID]; ok {
			resolved.Mapped = true
			resolved.MappingID = m.MappingID
			resolved.VendorFieldPath = m.VendorFieldPath
			resolved.Transformation = m.TransformationRule
			resolved.Priority = m.Priority
		}
		out.Fields = append(out.Fields, resolved)
	}
	return out, nil
}

// SetActive flips a mapping's active flag.
func (s *MappingService) SetActive(ctx context.Context, mappingID uint64, active bool) error {
	if mappingID == 0 {
		return &NotFoundError{Kind: "mapping", Key: "0"}
	}
	return s.Store.SetFieldMappingActive(ctx, mappingID, active)
}

func transformJSON(tag string) datatypes.JSON {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = "identity"
	}
	payload, err := json.Marshal(map[string]string{"type": tag})
	if err != nil {
		return datatypes.JSON([]byte(`{"type":"identity"}`))
	}
	return datatypes.JSON(payload)
}
