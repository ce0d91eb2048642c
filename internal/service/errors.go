package service

import "fmt"

// NotFoundError marks a lookup that resolved nothing. Batch callers skip
// the record; API callers map it to 404.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ConflictError marks an operation that would violate an invariant of
// already-stored data.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// UnknownCanonicalFieldError is raised when a mapping names a canonical
// field the seeded schema does not define.
type UnknownCanonicalFieldError struct {
	FieldName string
}

func (e *UnknownCanonicalFieldError) Error() string {
	return "unknown canonical field: " + e.FieldName
}

// UnknownSourceError is raised when a mapping references an endpoint or
// channel that is not in the catalog for the vendor.
type UnknownSourceError struct {
	SourceType string
	Key        string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown %s source: %s", e.SourceType, e.Key)
}

// CrossVendorLinkError is raised when a mapping or link pairs records
// that belong to different vendors.
type CrossVendorLinkError struct {
	ProductVendorID uint64
	SourceVendorID  uint64
}

func (e *CrossVendorLinkError) Error() string {
	return fmt.Sprintf("cross-vendor link: product vendor %d, source vendor %d",
		e.ProductVendorID, e.SourceVendorID)
}
