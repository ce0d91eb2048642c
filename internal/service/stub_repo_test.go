package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

// stubRepo is an in-memory CatalogRepository for service tests.
type stubRepo struct {
	vendors       []models.Vendor
	dataTypes     []models.CanonicalDataType
	fields        []models.CanonicalField
	typeFields    []models.DataTypeField
	endpoints     []models.RestEndpoint
	channels      []models.WebSocketChannel
	products      []models.Product
	mappings      []models.FieldMapping
	endpointLinks []models.ProductEndpointLink
	channelLinks  []models.ProductChannelLink
	syncStates    map[string]models.SyncState
	settings      map[string]models.SystemSetting

	nextID uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		syncStates: map[string]models.SyncState{},
		settings:   map[string]models.SystemSetting{},
	}
}

func (r *stubRepo) id() uint64 {
	r.nextID++
	return r.nextID
}

// seedTicker installs a minimal canonical ticker schema.
func (r *stubRepo) seedTicker(fields ...string) {
	dt := models.CanonicalDataType{DataTypeID: r.id(), DataTypeName: "ticker"}
	r.dataTypes = append(r.dataTypes, dt)
	for _, name := range fields {
		f := models.CanonicalField{CanonicalFieldID: r.id(), FieldName: name}
		r.fields = append(r.fields, f)
		r.typeFields = append(r.typeFields, models.DataTypeField{
			DataTypeID:       dt.DataTypeID,
			CanonicalFieldID: f.CanonicalFieldID,
		})
	}
}

func (r *stubRepo) addVendor(name string) *models.Vendor {
	v := models.Vendor{VendorID: r.id(), VendorName: name, Enabled: true}
	r.vendors = append(r.vendors, v)
	return &r.vendors[len(r.vendors)-1]
}

func (r *stubRepo) addEndpoint(vendorID uint64, path, method string) *models.RestEndpoint {
	e := models.RestEndpoint{EndpointID: r.id(), VendorID: vendorID, Path: path, Method: method}
	r.endpoints = append(r.endpoints, e)
	return &r.endpoints[len(r.endpoints)-1]
}

func (r *stubRepo) addChannel(vendorID uint64, name string) *models.WebSocketChannel {
	c := models.WebSocketChannel{ChannelID: r.id(), VendorID: vendorID, ChannelName: name}
	r.channels = append(r.channels, c)
	return &r.channels[len(r.channels)-1]
}

func (r *stubRepo) addProduct(vendorID uint64, symbol string) *models.Product {
	p := models.Product{ProductID: r.id(), VendorID: vendorID, Symbol: symbol, Status: models.ProductStatusOnline}
	r.products = append(r.products, p)
	return &r.products[len(r.products)-1]
}

func (r *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *stubRepo) UpsertVendor(ctx context.Context, item *models.Vendor) error {
	for i := range r.vendors {
		if r.vendors[i].VendorName == item.VendorName {
			item.VendorID = r.vendors[i].VendorID
			r.vendors[i] = *item
			return nil
		}
	}
	item.VendorID = r.id()
	r.vendors = append(r.vendors, *item)
	return nil
}

func (r *stubRepo) GetVendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	for i := range r.vendors {
		if r.vendors[i].VendorName == name {
			v := r.vendors[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetVendorByID(ctx context.Context, id uint64) (*models.Vendor, error) {
	for i := range r.vendors {
		if r.vendors[i].VendorID == id {
			v := r.vendors[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	out := append([]models.Vendor(nil), r.vendors...)
	sort.Slice(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	return out, nil
}

func (r *stubRepo) CountVendors(ctx context.Context) (int64, error) {
	return int64(len(r.vendors)), nil
}

func (r *stubRepo) GetDataTypeByName(ctx context.Context, name string) (*models.CanonicalDataType, error) {
	for i := range r.dataTypes {
		if r.dataTypes[i].DataTypeName == name {
			dt := r.dataTypes[i]
			return &dt, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetCanonicalFieldByName(ctx context.Context, name string) (*models.CanonicalField, error) {
	for i := range r.fields {
		if r.fields[i].FieldName == name {
			f := r.fields[i]
			return &f, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListRequiredFields(ctx context.Context, dataTypeName string) ([]models.CanonicalField, error) {
	dt, _ := r.GetDataTypeByName(ctx, dataTypeName)
	if dt == nil {
		return nil, nil
	}
	wanted := map[uint64]bool{}
	for _, tf := range r.typeFields {
		if tf.DataTypeID == dt.DataTypeID {
			wanted[tf.CanonicalFieldID] = true
		}
	}
	var out []models.CanonicalField
	for _, f := range r.fields {
		if wanted[f.CanonicalFieldID] {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out, nil
}

func (r *stubRepo) UpsertEndpointTx(ctx context.Context, tx *gorm.DB, item *models.RestEndpoint) error {
	for i := range r.endpoints {
		e := &r.endpoints[i]
		if e.VendorID == item.VendorID && e.Path == item.Path && e.Method == item.Method {
			item.EndpointID = e.EndpointID
			*e = *item
			return nil
		}
	}
	item.EndpointID = r.id()
	r.endpoints = append(r.endpoints, *item)
	return nil
}

func (r *stubRepo) UpsertChannelTx(ctx context.Context, tx *gorm.DB, item *models.WebSocketChannel) error {
	for i := range r.channels {
		c := &r.channels[i]
		if c.VendorID == item.VendorID && c.ChannelName == item.ChannelName {
			item.ChannelID = c.ChannelID
			*c = *item
			return nil
		}
	}
	item.ChannelID = r.id()
	r.channels = append(r.channels, *item)
	return nil
}

func (r *stubRepo) UpsertProductTx(ctx context.Context, tx *gorm.DB, item *models.Product) error {
	for i := range r.products {
		p := &r.products[i]
		if p.VendorID == item.VendorID && p.Symbol == item.Symbol {
			item.ProductID = p.ProductID
			*p = *item
			return nil
		}
	}
	item.ProductID = r.id()
	r.products = append(r.products, *item)
	return nil
}

func (r *stubRepo) GetEndpointByPath(ctx context.Context, vendorID uint64, path, method string) (*models.RestEndpoint, error) {
	if method == "" {
		method = "GET"
	}
	for i := range r.endpoints {
		e := r.endpoints[i]
		if e.VendorID == vendorID && e.Path == path && e.Method == method {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetEndpointByID(ctx context.Context, id uint64) (*models.RestEndpoint, error) {
	for i := range r.endpoints {
		if r.endpoints[i].EndpointID == id {
			e := r.endpoints[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetChannelByName(ctx context.Context, vendorID uint64, name string) (*models.WebSocketChannel, error) {
	for i := range r.channels {
		c := r.channels[i]
		if c.VendorID == vendorID && c.ChannelName == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetChannelByID(ctx context.Context, id uint64) (*models.WebSocketChannel, error) {
	for i := range r.channels {
		if r.channels[i].ChannelID == id {
			c := r.channels[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetProductByID(ctx context.Context, id uint64) (*models.Product, error) {
	for i := range r.products {
		if r.products[i].ProductID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetProductBySymbol(ctx context.Context, vendorID uint64, symbol string) (*models.Product, error) {
	for i := range r.products {
		p := r.products[i]
		if p.VendorID == vendorID && p.Symbol == symbol {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListEndpointsByVendor(ctx context.Context, vendorID uint64) ([]models.RestEndpoint, error) {
	var out []models.RestEndpoint
	for _, e := range r.endpoints {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubRepo) ListChannelsByVendor(ctx context.Context, vendorID uint64) ([]models.WebSocketChannel, error) {
	var out []models.WebSocketChannel
	for _, c := range r.channels {
		if c.VendorID == vendorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubRepo) filterProducts(params repository.ListProductsParams) []models.Product {
	var out []models.Product
	for _, p := range r.products {
		if params.VendorID != nil && p.VendorID != *params.VendorID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		if params.Symbol != nil && p.Symbol != *params.Symbol {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *stubRepo) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]models.Product, error) {
	out := r.filterProducts(params)
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *stubRepo) CountProducts(ctx context.Context, params repository.ListProductsParams) (int64, error) {
	return int64(len(r.filterProducts(params))), nil
}

func (r *stubRepo) FindFieldMapping(ctx context.Context, key repository.FieldMappingKey) (*models.FieldMapping, error) {
	for i := range r.mappings {
		m := r.mappings[i]
		if m.VendorID != key.VendorID || m.CanonicalFieldID != key.CanonicalFieldID {
			continue
		}
		if m.SourceType != key.SourceType || m.EntityType != key.EntityType || m.VendorFieldPath != key.VendorFieldPath {
			continue
		}
		if !uintPtrEq(m.EndpointID, key.EndpointID) || !uintPtrEq(m.ChannelID, key.ChannelID) {
			continue
		}
		return &m, nil
	}
	return nil, nil
}

func (r *stubRepo) CreateFieldMapping(ctx context.Context, item *models.FieldMapping) (bool, error) {
	existing, _ := r.FindFieldMapping(ctx, repository.FieldMappingKey{
		VendorID:         item.VendorID,
		CanonicalFieldID: item.CanonicalFieldID,
		SourceType:       item.SourceType,
		EntityType:       item.EntityType,
		VendorFieldPath:  item.VendorFieldPath,
		EndpointID:       item.EndpointID,
		ChannelID:        item.ChannelID,
	})
	if existing != nil {
		return false, nil
	}
	item.MappingID = r.id()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	r.mappings = append(r.mappings, *item)
	return true, nil
}

func (r *stubRepo) SetFieldMappingActive(ctx context.Context, mappingID uint64, active bool) error {
	for i := range r.mappings {
		if r.mappings[i].MappingID == mappingID {
			r.mappings[i].IsActive = active
		}
	}
	return nil
}

func (r *stubRepo) activeMappings(vendorID uint64, entityType, sourceType string) []models.FieldMapping {
	var out []models.FieldMapping
	for _, m := range r.mappings {
		if m.VendorID != vendorID || m.EntityType != entityType || !m.IsActive {
			continue
		}
		if sourceType != "" && m.SourceType != sourceType {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].MappingID > out[j].MappingID
	})
	return out
}

func (r *stubRepo) ListActiveMappings(ctx context.Context, vendorID uint64, entityType, sourceType string) ([]models.FieldMapping, error) {
	return r.activeMappings(vendorID, entityType, sourceType), nil
}

func (r *stubRepo) ListActiveMappingsByEntity(ctx context.Context, vendorID uint64, entityType string) ([]models.FieldMapping, error) {
	return r.activeMappings(vendorID, entityType, ""), nil
}

func (r *stubRepo) filterMappings(params repository.ListMappingsParams) []models.FieldMapping {
	var out []models.FieldMapping
	for _, m := range r.mappings {
		if params.VendorID != nil && m.VendorID != *params.VendorID {
			continue
		}
		if params.EntityType != nil && m.EntityType != *params.EntityType {
			continue
		}
		if params.SourceType != nil && m.SourceType != *params.SourceType {
			continue
		}
		if params.ActiveOnly && !m.IsActive {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *stubRepo) ListFieldMappings(ctx context.Context, params repository.ListMappingsParams) ([]models.FieldMapping, error) {
	out := r.filterMappings(params)
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *stubRepo) CountFieldMappings(ctx context.Context, params repository.ListMappingsParams) (int64, error) {
	return int64(len(r.filterMappings(params))), nil
}

func (r *stubRepo) UpsertProductEndpointLink(ctx context.Context, item *models.ProductEndpointLink) error {
	for _, l := range r.endpointLinks {
		if l.ProductID == item.ProductID && l.EndpointID == item.EndpointID && l.Role == item.Role {
			return nil
		}
	}
	item.LinkID = r.id()
	r.endpointLinks = append(r.endpointLinks, *item)
	return nil
}

func (r *stubRepo) UpsertProductChannelLink(ctx context.Context, item *models.ProductChannelLink) error {
	for _, l := range r.channelLinks {
		if l.ProductID == item.ProductID && l.ChannelID == item.ChannelID && l.Role == item.Role {
			return nil
		}
	}
	item.LinkID = r.id()
	r.channelLinks = append(r.channelLinks, *item)
	return nil
}

func (r *stubRepo) ListEndpointLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductEndpointLink, error) {
	var out []models.ProductEndpointLink
	for _, l := range r.endpointLinks {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubRepo) ListChannelLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductChannelLink, error) {
	var out []models.ProductChannelLink
	for _, l := range r.channelLinks {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubRepo) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	if state, ok := r.syncStates[scope]; ok {
		return &state, nil
	}
	return nil, nil
}

func (r *stubRepo) SaveSyncStateTx(ctx context.Context, tx *gorm.DB, state *models.SyncState) error {
	r.syncStates[state.Scope] = *state
	return nil
}

func (r *stubRepo) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	scopes := make([]string, 0, len(r.syncStates))
	for scope := range r.syncStates {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	out := make([]models.SyncState, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, r.syncStates[scope])
	}
	return out, nil
}

func (r *stubRepo) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	key := strings.TrimSpace(item.Key)
	if existing, ok := r.settings[key]; ok {
		item.ID = existing.ID
	} else {
		item.ID = r.id()
	}
	r.settings[key] = *item
	return nil
}

func (r *stubRepo) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if item, ok := r.settings[key]; ok {
		return &item, nil
	}
	return nil, nil
}

func uintPtrEq(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var _ repository.CatalogRepository = (*stubRepo)(nil)
